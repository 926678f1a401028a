package models

import (
	"time"

	"gorm.io/gorm"
)

// Skill levels accepted on a session.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// DateLayout is the storage format of Session.SessionDate. Keeping dates as
// ISO text makes range filters and GROUP BY plain string operations.
const DateLayout = "2006-01-02"

// Session represents one practice entry, optionally tracked by the timer
type Session struct {
	ID        uint           `gorm:"primarykey" json:"session_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID      string        `gorm:"not null;index;uniqueIndex:idx_sessions_user_display" json:"user"`
	DisplayID   uint          `gorm:"not null;uniqueIndex:idx_sessions_user_display" json:"display_id"`
	Instrument  string        `gorm:"size:200;not null" json:"instrument"`
	Description string        `gorm:"size:200" json:"description"`
	SessionDate string        `gorm:"size:10;not null;index" json:"session_date"`
	Duration    time.Duration `gorm:"not null;default:0" json:"-"`
	Goals       string        `json:"goals"`
	SkillLevel  string        `gorm:"size:20" json:"skill_level"`

	// Timer state
	InProgress     bool          `gorm:"not null;default:false" json:"in_progress"`
	StartedAt      *time.Time    `json:"started_at"`
	IsPaused       bool          `gorm:"not null;default:false" json:"is_paused"`
	PausedAt       *time.Time    `json:"paused_at"`
	PausedDuration time.Duration `gorm:"not null;default:0" json:"-"`

	// Relationships
	Tags []Tag `gorm:"many2many:session_tags;" json:"tags"`
}

// Date parses SessionDate in loc.
func (s *Session) Date(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s.SessionDate, loc)
}

// FormatDate renders t as a SessionDate value.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsValidSkillLevel reports whether level is empty or one of the known levels.
func IsValidSkillLevel(level string) bool {
	switch level {
	case "", SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	default:
		return false
	}
}
