package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/timer"
)

// StartTimerRequest holds the data needed to start a practice timer
type StartTimerRequest struct {
	Instrument  string
	Description string
	Goals       string
	SkillLevel  string
	TagIDs      []uint
}

// ActiveTimer is the result of ActiveTimer; Session is nil when idle.
type ActiveTimer struct {
	Active  bool            `json:"active"`
	Session *models.Session `json:"session,omitempty"`
}

// StartTimer starts a new practice timer for the caller
func (s *Store) StartTimer(ctx context.Context, c Caller, req StartTimerRequest) (*models.Session, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	instrument, err := normalizeInstrument(req.Instrument)
	if err != nil {
		return nil, err
	}
	if !models.IsValidSkillLevel(req.SkillLevel) {
		return nil, apperr.Validation("unknown skill level %q", req.SkillLevel)
	}

	session := models.Session{
		UserID:      c.UserID,
		Instrument:  instrument,
		Description: strings.TrimSpace(req.Description),
		Goals:       req.Goals,
		SkillLevel:  req.SkillLevel,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Check if there's already an active session
		var active models.Session
		err := own(tx, c).Where("in_progress = ?", true).First(&active).Error
		if err == nil {
			return apperr.Conflict("a session is already in progress (#%d, %s). Stop it first", active.DisplayID, active.Instrument)
		}
		if !isNotFound(err) {
			return err
		}

		tags, err := findTags(tx, c.UserID, req.TagIDs)
		if err != nil {
			return err
		}
		session.Tags = tags

		displayID, err := nextDisplayID(tx, c.UserID)
		if err != nil {
			return err
		}
		session.DisplayID = displayID

		timer.Start(&session, s.Now())

		return tx.Omit("Tags.*").Create(&session).Error
	})
	if isDuplicate(err) {
		// The partial unique index caught a concurrent start.
		return nil, apperr.Conflict("a session is already in progress")
	}
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "timer started", "user", c.UserID, "session", session.ID, "instrument", session.Instrument)
	return &session, nil
}

// PauseTimer pauses the caller's running timer
func (s *Store) PauseTimer(ctx context.Context, c Caller, id uint) (*models.Session, error) {
	return s.transition(ctx, c, id, "paused", timer.Pause)
}

// ResumeTimer resumes the caller's paused timer
func (s *Store) ResumeTimer(ctx context.Context, c Caller, id uint) (*models.Session, error) {
	return s.transition(ctx, c, id, "resumed", timer.Resume)
}

// StopTimer stops the caller's timer and records the practised duration
func (s *Store) StopTimer(ctx context.Context, c Caller, id uint) (*models.Session, error) {
	return s.transition(ctx, c, id, "stopped", timer.Stop)
}

// ActiveTimer returns the caller's in-progress session, if any. Having no
// active timer is not an error.
func (s *Store) ActiveTimer(ctx context.Context, c Caller) (ActiveTimer, error) {
	if err := c.validate(); err != nil {
		return ActiveTimer{}, err
	}

	var session models.Session
	err := own(s.db.WithContext(ctx), c).
		Where("in_progress = ?", true).
		Preload("Tags").
		First(&session).Error
	if isNotFound(err) {
		return ActiveTimer{Active: false}, nil
	}
	if err != nil {
		return ActiveTimer{}, fmt.Errorf("get active timer: %w", err)
	}
	return ActiveTimer{Active: true, Session: &session}, nil
}

// transition runs one timer state change as a read-modify-write on a single
// row owned by the caller.
func (s *Store) transition(ctx context.Context, c Caller, id uint, verb string, apply func(*models.Session, time.Time) error) (*models.Session, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var session models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := own(tx, c).First(&session, id).Error
		if isNotFound(err) {
			return apperr.NotFound("session %d not found", id)
		}
		if err != nil {
			return err
		}

		if err := apply(&session, s.Now()); err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Save(&session).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&session).Association("Tags").Find(&session.Tags); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	s.log.DebugContext(ctx, "timer "+verb, "user", c.UserID, "session", session.ID, "duration", session.Duration)
	return &session, nil
}
