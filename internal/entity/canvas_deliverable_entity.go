package entity

import (
	"time"

	"github.com/google/uuid"
)

type CanvasDeliverable struct {
	Id        uuid.UUID
	ThreadId  uuid.UUID
	UserId    uuid.UUID
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
