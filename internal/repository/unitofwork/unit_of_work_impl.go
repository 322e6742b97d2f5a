package unitofwork

import (
	"context"
	"fmt"

	"ai-canvas-be/internal/repository/contract"
	"ai-canvas-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // Active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) CanvasThreadRepository() contract.CanvasThreadRepository {
	return implementation.NewCanvasThreadRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CanvasSectionRepository() contract.CanvasSectionRepository {
	return implementation.NewCanvasSectionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CanvasMessageRepository() contract.CanvasMessageRepository {
	return implementation.NewCanvasMessageRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CanvasDeliverableRepository() contract.CanvasDeliverableRepository {
	return implementation.NewCanvasDeliverableRepository(u.getDB())
}
