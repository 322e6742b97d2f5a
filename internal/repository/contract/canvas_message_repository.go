package contract

import (
	"context"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CanvasMessageRepository interface {
	Create(ctx context.Context, message *entity.CanvasMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanvasMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanvasMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
