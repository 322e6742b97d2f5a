package contract

import (
	"context"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CanvasSectionRepository interface {
	// Upsert writes the section draft, overwriting any existing row for
	// the same (thread, section) pair.
	Upsert(ctx context.Context, section *entity.CanvasSection) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanvasSection, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanvasSection, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
