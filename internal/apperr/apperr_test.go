package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "validation", err: Validation("instrument is required"), want: CodeValidation},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", NotFound("session %d not found", 4)), want: CodeNotFound},
		{name: "plain error", err: errors.New("disk full"), want: CodeUnknown},
		{name: "nil", err: nil, want: CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("pause: %w", InvalidState("session is already paused"))

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.True(t, IsCode(err, CodeInvalidState))
	assert.Equal(t, "pause: session is already paused", err.Error())
}
