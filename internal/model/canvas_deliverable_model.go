package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CanvasDeliverable struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content   string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CanvasDeliverable) TableName() string {
	return "canvas_deliverables"
}
