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

type CanvasMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CanvasMapper
}

func NewCanvasMessageRepository(db *gorm.DB) contract.CanvasMessageRepository {
	return &CanvasMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewCanvasMapper(),
	}
}

func (r *CanvasMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CanvasMessageRepositoryImpl) Create(ctx context.Context, message *entity.CanvasMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *CanvasMessageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CanvasMessage{}, id).Error
}

func (r *CanvasMessageRepositoryImpl) DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("thread_id = ?", threadId).Delete(&model.CanvasMessage{}).Error
}

func (r *CanvasMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanvasMessage, error) {
	var m model.CanvasMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *CanvasMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanvasMessage, error) {
	var models []*model.CanvasMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CanvasMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *CanvasMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CanvasMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
