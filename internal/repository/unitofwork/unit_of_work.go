package unitofwork

import (
	"context"

	"ai-canvas-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CanvasThreadRepository() contract.CanvasThreadRepository
	CanvasSectionRepository() contract.CanvasSectionRepository
	CanvasMessageRepository() contract.CanvasMessageRepository
	CanvasDeliverableRepository() contract.CanvasDeliverableRepository
}
