package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SECTION_SAVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSectionSaved marks one section reaching persisted state.
func NewSectionSaved(userID, threadID, sectionID, status string, completed, total int) BaseEvent {
	return BaseEvent{
		Type: "SECTION_SAVED",
		Data: map[string]interface{}{
			"user_id":    userID,
			"thread_id":  threadID,
			"section_id": sectionID,
			"status":     status,
			"completed":  completed,
			"total":      total,
		},
		OccurredAt: time.Now(),
	}
}

// NewCanvasCompleted marks the deliverable being synthesized.
func NewCanvasCompleted(userID, threadID string, total int) BaseEvent {
	return BaseEvent{
		Type: "CANVAS_COMPLETED",
		Data: map[string]interface{}{
			"user_id":   userID,
			"thread_id": threadID,
			"completed": total,
			"total":     total,
		},
		OccurredAt: time.Now(),
	}
}
