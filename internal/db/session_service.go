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
)

// CreateSessionRequest holds the data needed to log a practice session
type CreateSessionRequest struct {
	Instrument  string
	Description string
	SessionDate string // YYYY-MM-DD, defaults to today
	Duration    time.Duration
	Goals       string
	SkillLevel  string
	TagIDs      []uint
}

// UpdateSessionRequest holds the fields to change; nil fields are kept.
type UpdateSessionRequest struct {
	Instrument  *string
	Description *string
	SessionDate *string
	Duration    *time.Duration
	Goals       *string
	SkillLevel  *string
	TagIDs      *[]uint
}

// SessionQuery filters ListSessions.
type SessionQuery struct {
	User       string // admins only; empty lists every user
	Instrument string
	From       string // YYYY-MM-DD inclusive
	To         string // YYYY-MM-DD inclusive
	TagID      uint
	Search     string // case-insensitive match on instrument, description or goals
	Limit      int
}

// CreateSession logs a finished practice session for the caller
func (s *Store) CreateSession(ctx context.Context, c Caller, req CreateSessionRequest) (*models.Session, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	instrument, err := normalizeInstrument(req.Instrument)
	if err != nil {
		return nil, err
	}
	if req.Duration < 0 {
		return nil, apperr.Validation("duration cannot be negative")
	}
	if !models.IsValidSkillLevel(req.SkillLevel) {
		return nil, apperr.Validation("unknown skill level %q", req.SkillLevel)
	}

	date := req.SessionDate
	if date == "" {
		date = models.FormatDate(s.Now())
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}

	session := models.Session{
		UserID:      c.UserID,
		Instrument:  instrument,
		Description: strings.TrimSpace(req.Description),
		SessionDate: date,
		Duration:    req.Duration,
		Goals:       req.Goals,
		SkillLevel:  req.SkillLevel,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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

		return tx.Omit("Tags.*").Create(&session).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "session logged", "user", c.UserID, "session", session.ID, "display_id", session.DisplayID)
	return &session, nil
}

// GetSession retrieves a session by ID
func (s *Store) GetSession(ctx context.Context, c Caller, id uint) (*models.Session, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var session models.Session
	err := scope(s.db.WithContext(ctx), c).Preload("Tags").First(&session, id).Error
	if isNotFound(err) {
		return nil, apperr.NotFound("session %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return &session, nil
}

// SessionByDisplayID retrieves one of the caller's own sessions by the
// per-user number shown in the CLI
func (s *Store) SessionByDisplayID(ctx context.Context, c Caller, displayID uint) (*models.Session, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var session models.Session
	err := own(s.db.WithContext(ctx), c).
		Where("display_id = ?", displayID).
		Preload("Tags").
		First(&session).Error
	if isNotFound(err) {
		return nil, apperr.NotFound("session #%d not found", displayID)
	}
	if err != nil {
		return nil, fmt.Errorf("get session #%d: %w", displayID, err)
	}
	return &session, nil
}

// ListSessions retrieves sessions matching q, newest first
func (s *Store) ListSessions(ctx context.Context, c Caller, q SessionQuery) ([]models.Session, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	query := scope(s.db.WithContext(ctx), c).Preload("Tags")
	if c.Admin && q.User != "" {
		query = query.Where("user_id = ?", q.User)
	}
	if q.Instrument != "" {
		query = query.Where("LOWER(instrument) = ?", strings.ToLower(q.Instrument))
	}
	if q.From != "" {
		if err := validateDate(q.From); err != nil {
			return nil, err
		}
		query = query.Where("session_date >= ?", q.From)
	}
	if q.To != "" {
		if err := validateDate(q.To); err != nil {
			return nil, err
		}
		query = query.Where("session_date <= ?", q.To)
	}
	if q.TagID != 0 {
		query = query.Where("id IN (?)", s.db.Table("session_tags").Select("session_id").Where("tag_id = ?", q.TagID))
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("(LOWER(instrument) LIKE ? OR LOWER(description) LIKE ? OR LOWER(goals) LIKE ?)", like, like, like)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var sessions []models.Session
	if err := query.Order("session_date DESC, id DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSession applies the non-nil fields of req to a session
func (s *Store) UpdateSession(ctx context.Context, c Caller, id uint, req UpdateSessionRequest) (*models.Session, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var session models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := scope(tx, c).First(&session, id).Error
		if isNotFound(err) {
			return apperr.NotFound("session %d not found", id)
		}
		if err != nil {
			return err
		}

		if err := applySessionUpdate(&session, req); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&session).Error; err != nil {
			return err
		}

		if req.TagIDs != nil {
			// Tags always belong to the session owner, even when an admin edits.
			tags, err := findTags(tx, session.UserID, *req.TagIDs)
			if err != nil {
				return err
			}
			association := tx.Model(&session).Association("Tags")
			if len(tags) == 0 {
				return association.Clear()
			}
			return association.Replace(tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(ctx, c, id)
}

func applySessionUpdate(session *models.Session, req UpdateSessionRequest) error {
	if req.Instrument != nil {
		instrument, err := normalizeInstrument(*req.Instrument)
		if err != nil {
			return err
		}
		session.Instrument = instrument
	}
	if req.Description != nil {
		session.Description = strings.TrimSpace(*req.Description)
	}
	if req.SessionDate != nil {
		if err := validateDate(*req.SessionDate); err != nil {
			return err
		}
		session.SessionDate = *req.SessionDate
	}
	if req.Duration != nil {
		if session.InProgress {
			return apperr.InvalidState("session #%d has a running timer; stop it before editing the duration", session.DisplayID)
		}
		if *req.Duration < 0 {
			return apperr.Validation("duration cannot be negative")
		}
		session.Duration = *req.Duration
	}
	if req.Goals != nil {
		session.Goals = *req.Goals
	}
	if req.SkillLevel != nil {
		if !models.IsValidSkillLevel(*req.SkillLevel) {
			return apperr.Validation("unknown skill level %q", *req.SkillLevel)
		}
		session.SkillLevel = *req.SkillLevel
	}
	return nil
}

// DeleteSession removes a session. Its display ID is never handed out again.
func (s *Store) DeleteSession(ctx context.Context, c Caller, id uint) error {
	if err := c.validate(); err != nil {
		return err
	}

	res := scope(s.db.WithContext(ctx), c).Delete(&models.Session{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete session %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("session %d not found", id)
	}

	s.log.DebugContext(ctx, "session deleted", "user", c.UserID, "session", id)
	return nil
}

// nextDisplayID returns the next per-user ordinal. Deleted sessions are
// included so display IDs are never reused.
func nextDisplayID(tx *gorm.DB, userID string) (uint, error) {
	var maxID uint
	err := tx.Unscoped().
		Model(&models.Session{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(display_id), 0)").
		Scan(&maxID).Error
	if err != nil {
		return 0, fmt.Errorf("next display id: %w", err)
	}
	return maxID + 1, nil
}

// findTags loads the tags with the given IDs, all of which must belong to
// userID
func findTags(tx *gorm.DB, userID string, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var tags []models.Tag
	if err := tx.Where("user_id = ? AND id IN ?", userID, unique).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("find tags: %w", err)
	}
	if len(tags) != len(unique) {
		found := make(map[uint]bool, len(tags))
		for _, tag := range tags {
			found[tag.ID] = true
		}
		for _, id := range unique {
			if !found[id] {
				return nil, apperr.NotFound("tag %d not found", id)
			}
		}
	}
	return tags, nil
}

// normalizeInstrument lowercases instrument names so stats group them
// regardless of how they were typed.
func normalizeInstrument(name string) (string, error) {
	instrument := strings.ToLower(strings.TrimSpace(name))
	if instrument == "" {
		return "", apperr.Validation("instrument is required")
	}
	return instrument, nil
}

func validateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return apperr.Validation("invalid session date %q, expected YYYY-MM-DD", date)
	}
	return nil
}
