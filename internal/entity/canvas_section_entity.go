package entity

import (
	"time"

	"github.com/google/uuid"
)

type CanvasSection struct {
	Id           uuid.UUID
	ThreadId     uuid.UUID
	UserId       uuid.UUID
	SectionId    string
	Content      []byte // Structured document JSON
	PlainText    string
	Status       string
	Satisfaction string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
