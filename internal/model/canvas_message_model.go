package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CanvasMessage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Chat          string         `gorm:"type:text;not null"`
	Role          string         `gorm:"type:varchar(50);not null"`
	ThreadId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	SectionId     string         `gorm:"type:varchar(50)"`
	TriggeredSave bool           `gorm:"default:false"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (CanvasMessage) TableName() string {
	return "canvas_messages"
}
