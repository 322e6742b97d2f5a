package store

import (
	"context"

	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/document"
)

// SectionRecord is one persisted section, keyed (user, thread, section).
type SectionRecord struct {
	UserID       string
	ThreadID     string
	SectionID    catalog.SectionID
	Content      document.Document
	PlainText    string
	Status       catalog.SectionStatus
	Satisfaction string
}

// SectionStore persists section content. Implementations must upsert
// idempotently on (user, thread, section) so a retried write after a
// timeout cannot duplicate or corrupt a row. The orchestrator tolerates
// an unavailable store: failures are logged and in-memory state remains
// authoritative for the session.
type SectionStore interface {
	SaveSection(ctx context.Context, rec SectionRecord) error
	GetSection(ctx context.Context, userID, threadID string, sectionID catalog.SectionID) (*SectionRecord, error)
}

// DeliverableStore persists the final synthesized document, one per
// thread.
type DeliverableStore interface {
	SaveDeliverable(ctx context.Context, userID, threadID, content string) error
	GetDeliverable(ctx context.Context, userID, threadID string) (string, error)
}
