package entity

import (
	"time"

	"github.com/google/uuid"
)

type CanvasThread struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Finished  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
