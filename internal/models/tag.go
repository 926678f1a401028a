package models

import "time"

// DefaultTagColor is applied when a tag is created without a colour.
const DefaultTagColor = "#3B82F6"

// Tag represents a user-scoped session label
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID string `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"user"`
	Name   string `gorm:"size:50;not null;uniqueIndex:idx_tags_user_name" json:"name"`
	Color  string `gorm:"size:7;not null;default:'#3B82F6'" json:"color"`

	// Relationships
	Sessions []Session `gorm:"many2many:session_tags;" json:"-"`
}

// SessionTag is the join table for the many-to-many relationship
type SessionTag struct {
	SessionID uint `gorm:"primaryKey"`
	TagID     uint `gorm:"primaryKey"`
}
