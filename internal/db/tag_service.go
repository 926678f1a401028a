package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/models"
	"github.com/balkashynov/shed/internal/parser"
)

const maxTagNameLength = 50

// CreateTagRequest holds the data needed to create a tag
type CreateTagRequest struct {
	Name  string
	Color string // #RRGGBB, defaults to models.DefaultTagColor
}

// UpdateTagRequest holds the tag fields to change; nil fields are kept.
type UpdateTagRequest struct {
	Name  *string
	Color *string
}

// CreateTag creates a tag owned by the caller
func (s *Store) CreateTag(ctx context.Context, c Caller, req CreateTagRequest) (*models.Tag, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	name, err := normalizeTagName(req.Name)
	if err != nil {
		return nil, err
	}
	color, err := normalizeTagColor(req.Color)
	if err != nil {
		return nil, err
	}

	tag := models.Tag{UserID: c.UserID, Name: name, Color: color}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTagNameFree(tx, c.UserID, name, 0); err != nil {
			return err
		}
		return tx.Create(&tag).Error
	})
	if isDuplicate(err) {
		return nil, apperr.Conflict("tag %q already exists", name)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindOrCreateTags finds the caller's tags by name, creating missing ones
// with the default colour
func (s *Store) FindOrCreateTags(ctx context.Context, c Caller, names []string) ([]models.Tag, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var tags []models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, raw := range names {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}

			var tag models.Tag
			err := tx.Where("user_id = ? AND name = ?", c.UserID, name).First(&tag).Error
			if isNotFound(err) {
				if len(name) > maxTagNameLength {
					return apperr.Validation("tag name must be at most %d characters", maxTagNameLength)
				}
				tag = models.Tag{UserID: c.UserID, Name: name, Color: models.DefaultTagColor}
				err = tx.Create(&tag).Error
			}
			if err != nil {
				return err
			}

			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag retrieves a tag by ID
func (s *Store) GetTag(ctx context.Context, c Caller, id uint) (*models.Tag, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var tag models.Tag
	err := scope(s.db.WithContext(ctx), c).First(&tag, id).Error
	if isNotFound(err) {
		return nil, apperr.NotFound("tag %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag %d: %w", id, err)
	}
	return &tag, nil
}

// ListTags retrieves the caller's tags ordered by name
func (s *Store) ListTags(ctx context.Context, c Caller) ([]models.Tag, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var tags []models.Tag
	if err := scope(s.db.WithContext(ctx), c).Order("name ASC, id ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// UpdateTag renames or recolours a tag
func (s *Store) UpdateTag(ctx context.Context, c Caller, id uint, req UpdateTagRequest) (*models.Tag, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var tag models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := scope(tx, c).First(&tag, id).Error
		if isNotFound(err) {
			return apperr.NotFound("tag %d not found", id)
		}
		if err != nil {
			return err
		}

		if req.Name != nil {
			name, err := normalizeTagName(*req.Name)
			if err != nil {
				return err
			}
			if err := ensureTagNameFree(tx, tag.UserID, name, tag.ID); err != nil {
				return err
			}
			tag.Name = name
		}
		if req.Color != nil {
			color, err := normalizeTagColor(*req.Color)
			if err != nil {
				return err
			}
			tag.Color = color
		}

		return tx.Save(&tag).Error
	})
	if isDuplicate(err) {
		return nil, apperr.Conflict("tag %q already exists", tag.Name)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag removes a tag and detaches it from every session. The sessions
// themselves are kept.
func (s *Store) DeleteTag(ctx context.Context, c Caller, id uint) error {
	if err := c.validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		err := scope(tx, c).First(&tag, id).Error
		if isNotFound(err) {
			return apperr.NotFound("tag %d not found", id)
		}
		if err != nil {
			return err
		}

		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.SessionTag{}).Error; err != nil {
			return fmt.Errorf("detach tag %d: %w", id, err)
		}
		return tx.Delete(&tag).Error
	})
}

func ensureTagNameFree(tx *gorm.DB, userID, name string, exceptID uint) error {
	var count int64
	err := tx.Model(&models.Tag{}).
		Where("user_id = ? AND name = ? AND id <> ?", userID, name, exceptID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("tag %q already exists", name)
	}
	return nil
}

func normalizeTagName(name string) (string, error) {
	name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "#"))
	if name == "" {
		return "", apperr.Validation("tag name is required")
	}
	if len(name) > maxTagNameLength {
		return "", apperr.Validation("tag name must be at most %d characters", maxTagNameLength)
	}
	return name, nil
}

func normalizeTagColor(color string) (string, error) {
	normalized, err := parser.NormalizeColor(color)
	if err != nil {
		return "", apperr.Validation("%v", err)
	}
	if normalized == "" {
		return models.DefaultTagColor, nil
	}
	return normalized, nil
}
