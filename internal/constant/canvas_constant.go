package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// Greeting stored as the first visible message of a new thread.
	ThreadGreetingMessage = "Hi! I'm here to help you build your Value Canvas. We'll work through it section by section, starting with a short interview about you and your business. Ready when you are."

	DefaultThreadTitle = "Untitled canvas"
)

// Event type codes published on the NATS bus.
const (
	EventSectionSaved    = "SECTION_SAVED"
	EventCanvasCompleted = "CANVAS_COMPLETED"
)
