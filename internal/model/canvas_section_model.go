package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CanvasSection holds one section's saved draft. One row per
// (thread_id, section_id); saves overwrite in place.
type CanvasSection struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_canvas_sections_thread_section,priority:1"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	SectionId    string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_canvas_sections_thread_section,priority:2"`
	Content      datatypes.JSON `gorm:"type:jsonb;not null"`
	PlainText    string         `gorm:"type:text;not null"`
	Status       string         `gorm:"type:varchar(20);not null;default:'in_progress'"`
	Satisfaction string         `gorm:"type:text"` // Free-text rating feedback from the user
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (CanvasSection) TableName() string {
	return "canvas_sections"
}
