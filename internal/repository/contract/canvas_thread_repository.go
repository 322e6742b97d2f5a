package contract

import (
	"context"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CanvasThreadRepository interface {
	Create(ctx context.Context, thread *entity.CanvasThread) error
	Update(ctx context.Context, thread *entity.CanvasThread) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanvasThread, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanvasThread, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
