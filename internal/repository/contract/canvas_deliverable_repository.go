package contract

import (
	"context"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CanvasDeliverableRepository interface {
	Upsert(ctx context.Context, deliverable *entity.CanvasDeliverable) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanvasDeliverable, error)
}
