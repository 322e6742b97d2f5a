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
)

type CanvasThreadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CanvasMapper
}

func NewCanvasThreadRepository(db *gorm.DB) contract.CanvasThreadRepository {
	return &CanvasThreadRepositoryImpl{
		db:     db,
		mapper: mapper.NewCanvasMapper(),
	}
}

func (r *CanvasThreadRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CanvasThreadRepositoryImpl) Create(ctx context.Context, thread *entity.CanvasThread) error {
	m := r.mapper.ThreadToModel(thread)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*thread = *r.mapper.ThreadToEntity(m)
	return nil
}

func (r *CanvasThreadRepositoryImpl) Update(ctx context.Context, thread *entity.CanvasThread) error {
	m := r.mapper.ThreadToModel(thread)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*thread = *r.mapper.ThreadToEntity(m)
	return nil
}

func (r *CanvasThreadRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CanvasThread{}, id).Error
}

func (r *CanvasThreadRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanvasThread, error) {
	var m model.CanvasThread
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ThreadToEntity(&m), nil
}

func (r *CanvasThreadRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanvasThread, error) {
	var models []*model.CanvasThread
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CanvasThread, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ThreadToEntity(m)
	}
	return entities, nil
}

func (r *CanvasThreadRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CanvasThread{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
