package implementation

import (
	"context"
	"errors"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/mapper"
	"ai-canvas-be/internal/model"
	"ai-canvas-be/internal/repository/contract"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CanvasDeliverableRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CanvasMapper
}

func NewCanvasDeliverableRepository(db *gorm.DB) contract.CanvasDeliverableRepository {
	return &CanvasDeliverableRepositoryImpl{
		db:     db,
		mapper: mapper.NewCanvasMapper(),
	}
}

func (r *CanvasDeliverableRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CanvasDeliverableRepositoryImpl) Upsert(ctx context.Context, deliverable *entity.CanvasDeliverable) error {
	m := r.mapper.DeliverableToModel(deliverable)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "thread_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*deliverable = *r.mapper.DeliverableToEntity(m)
	return nil
}

func (r *CanvasDeliverableRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CanvasDeliverable{}, id).Error
}

func (r *CanvasDeliverableRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanvasDeliverable, error) {
	var m model.CanvasDeliverable
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DeliverableToEntity(&m), nil
}
