// Package timer implements the practice timer state machine. Transitions
// mutate a models.Session in place and never touch storage; the caller is
// responsible for loading and saving the row around them.
package timer

import (
	"time"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/models"
)

// State is the timer state of a single session.
type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
	Stopped State = "stopped"
)

// StateOf derives the timer state from the session's fields.
func StateOf(s *models.Session) State {
	switch {
	case s == nil:
		return Idle
	case s.InProgress && s.IsPaused:
		return Paused
	case s.InProgress:
		return Running
	case s.StartedAt != nil:
		return Stopped
	default:
		return Idle
	}
}

// Start initialises a fresh session as a running timer.
func Start(s *models.Session, now time.Time) {
	started := now
	s.InProgress = true
	s.StartedAt = &started
	s.IsPaused = false
	s.PausedAt = nil
	s.PausedDuration = 0
	s.Duration = 0
	s.SessionDate = models.FormatDate(now)
}

// Pause moves a running timer to paused.
func Pause(s *models.Session, now time.Time) error {
	if !s.InProgress {
		return apperr.InvalidState("session #%d is not in progress", s.DisplayID)
	}
	if s.IsPaused {
		return apperr.InvalidState("session #%d is already paused", s.DisplayID)
	}

	pausedAt := now
	s.IsPaused = true
	s.PausedAt = &pausedAt
	return nil
}

// Resume moves a paused timer back to running, banking the pause interval.
func Resume(s *models.Session, now time.Time) error {
	if !s.InProgress || !s.IsPaused {
		return apperr.InvalidState("session #%d is not paused", s.DisplayID)
	}

	bankPause(s, now)
	return nil
}

// Stop finalises the duration of an in-progress timer. A paused timer is
// resumed first so time spent paused up to now is not counted.
func Stop(s *models.Session, now time.Time) error {
	if !s.InProgress {
		return apperr.InvalidState("session #%d is not in progress", s.DisplayID)
	}

	if s.IsPaused {
		bankPause(s, now)
	}

	s.Duration = clamp(sinceStart(s, now) - s.PausedDuration)
	s.InProgress = false
	return nil
}

// Elapsed returns the practice time accumulated so far, excluding pauses.
// For a stopped or manually logged session it is the recorded duration.
func Elapsed(s *models.Session, now time.Time) time.Duration {
	if !s.InProgress {
		return s.Duration
	}

	paused := s.PausedDuration
	if s.IsPaused && s.PausedAt != nil {
		paused += clamp(now.Sub(*s.PausedAt))
	}
	return clamp(sinceStart(s, now) - paused)
}

func bankPause(s *models.Session, now time.Time) {
	if s.PausedAt != nil {
		s.PausedDuration += clamp(now.Sub(*s.PausedAt))
	}
	s.IsPaused = false
	s.PausedAt = nil
}

func sinceStart(s *models.Session, now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	return now.Sub(*s.StartedAt)
}

// clamp guards against clock skew producing negative durations.
func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
