package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/shed/internal/config"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shed.log")
	cfg := &config.Config{LogLevel: "info", LogFormat: "json", LogFile: path}

	logger, closer, err := New(cfg)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("timer started", "session", 3)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "timer started", entry["msg"])
	assert.EqualValues(t, 3, entry["session"])
}

func TestNewHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "text", slog.LevelWarn))

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(&config.Config{LogLevel: "chatty", LogFormat: "text"})
	assert.Error(t, err)
}
