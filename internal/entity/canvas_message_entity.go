package entity

import (
	"time"

	"github.com/google/uuid"
)

type CanvasMessage struct {
	Id            uuid.UUID
	Chat          string
	Role          string
	ThreadId      uuid.UUID
	SectionId     string
	TriggeredSave bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
