package model

import (
	"time"

	"github.com/google/uuid"
)

// ProgressEvent is the payload pushed to connected clients when a
// thread's progress changes. Not persisted; history is reconstructed
// from canvas_sections.
type ProgressEvent struct {
	ThreadId   uuid.UUID `json:"thread_id"`
	UserId     uuid.UUID `json:"user_id"`
	SectionId  string    `json:"section_id"`
	Status     string    `json:"status"`
	Event      string    `json:"event"` // SECTION_SAVED | CANVAS_COMPLETED
	Completed  int       `json:"completed"`
	Total      int       `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}
