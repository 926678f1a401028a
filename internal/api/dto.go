package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/parser"
	"github.com/balkashynov/shed/internal/timer"
)

type sessionResponse struct {
	SessionID             uint         `json:"session_id"`
	DisplayID             uint         `json:"display_id"`
	User                  string       `json:"user"`
	Instrument            string       `json:"instrument"`
	Description           string       `json:"description"`
	SessionDate           string       `json:"session_date"`
	DurationSeconds       int64        `json:"duration_seconds"`
	Goals                 string       `json:"goals"`
	SkillLevel            string       `json:"skill_level"`
	Tags                  []models.Tag `json:"tags"`
	InProgress            bool         `json:"in_progress"`
	StartedAt             *time.Time   `json:"started_at"`
	IsPaused              bool         `json:"is_paused"`
	PausedAt              *time.Time   `json:"paused_at"`
	PausedDurationSeconds int64        `json:"paused_duration_seconds"`
	ElapsedSeconds        int64        `json:"elapsed_seconds"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

func newSessionResponse(s *models.Session, now time.Time) sessionResponse {
	tags := s.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return sessionResponse{
		SessionID:             s.ID,
		DisplayID:             s.DisplayID,
		User:                  s.UserID,
		Instrument:            s.Instrument,
		Description:           s.Description,
		SessionDate:           s.SessionDate,
		DurationSeconds:       int64(s.Duration / time.Second),
		Goals:                 s.Goals,
		SkillLevel:            s.SkillLevel,
		Tags:                  tags,
		InProgress:            s.InProgress,
		StartedAt:             s.StartedAt,
		IsPaused:              s.IsPaused,
		PausedAt:              s.PausedAt,
		PausedDurationSeconds: int64(s.PausedDuration / time.Second),
		ElapsedSeconds:        int64(timer.Elapsed(s, now) / time.Second),
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func newSessionResponses(sessions []models.Session, now time.Time) []sessionResponse {
	out := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, newSessionResponse(&sessions[i], now))
	}
	return out
}

type activeTimerResponse struct {
	Active  bool             `json:"active"`
	Session *sessionResponse `json:"session,omitempty"`
}

// maxDurationSeconds matches the 24h cap parser.ParseDuration applies to
// duration strings.
const maxDurationSeconds = 24 * 60 * 60

func checkDurationSeconds(seconds float64) error {
	if seconds < 0 || seconds > maxDurationSeconds {
		return apperr.Validation("duration must be between 0 and %d seconds", maxDurationSeconds)
	}
	return nil
}

// durationValue accepts a JSON number of seconds or a duration string such
// as "1h30m", "45m" or "1:15".
type durationValue time.Duration

func (d *durationValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parser.ParseDuration(s)
		if err != nil {
			return apperr.Validation("invalid duration %q: %v", s, err)
		}
		*d = durationValue(parsed)
		return nil
	}

	seconds, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return apperr.Validation("duration must be seconds or a duration string")
	}
	if err := checkDurationSeconds(seconds); err != nil {
		return err
	}
	*d = durationValue(time.Duration(seconds * float64(time.Second)))
	return nil
}

// sessionRequest is the body of session create and update calls. Absent
// fields are left untouched on update.
type sessionRequest struct {
	Instrument      *string        `json:"instrument"`
	Description     *string        `json:"description"`
	SessionDate     *string        `json:"session_date"`
	Duration        *durationValue `json:"duration"`
	DurationSeconds *int64         `json:"duration_seconds"`
	Goals           *string        `json:"goals"`
	SkillLevel      *string        `json:"skill_level"`
	TagIDs          *[]uint        `json:"tag_ids"`
}

func (req sessionRequest) duration() (*time.Duration, error) {
	switch {
	case req.DurationSeconds != nil:
		if err := checkDurationSeconds(float64(*req.DurationSeconds)); err != nil {
			return nil, err
		}
		d := time.Duration(*req.DurationSeconds) * time.Second
		return &d, nil
	case req.Duration != nil:
		d := time.Duration(*req.Duration)
		return &d, nil
	default:
		return nil, nil
	}
}

func (req sessionRequest) toCreate() (db.CreateSessionRequest, error) {
	d, err := req.duration()
	if err != nil {
		return db.CreateSessionRequest{}, err
	}
	out := db.CreateSessionRequest{
		Instrument:  deref(req.Instrument),
		Description: deref(req.Description),
		SessionDate: deref(req.SessionDate),
		Goals:       deref(req.Goals),
		SkillLevel:  deref(req.SkillLevel),
	}
	if d != nil {
		out.Duration = *d
	}
	if req.TagIDs != nil {
		out.TagIDs = *req.TagIDs
	}
	return out, nil
}

func (req sessionRequest) toUpdate() (db.UpdateSessionRequest, error) {
	d, err := req.duration()
	if err != nil {
		return db.UpdateSessionRequest{}, err
	}
	return db.UpdateSessionRequest{
		Instrument:  req.Instrument,
		Description: req.Description,
		SessionDate: req.SessionDate,
		Duration:    d,
		Goals:       req.Goals,
		SkillLevel:  req.SkillLevel,
		TagIDs:      req.TagIDs,
	}, nil
}

type startTimerRequest struct {
	Instrument  string `json:"instrument"`
	Description string `json:"description"`
	Goals       string `json:"goals"`
	SkillLevel  string `json:"skill_level"`
	TagIDs      []uint `json:"tag_ids"`
}

type tagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
