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

type CanvasSectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CanvasMapper
}

func NewCanvasSectionRepository(db *gorm.DB) contract.CanvasSectionRepository {
	return &CanvasSectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCanvasMapper(),
	}
}

func (r *CanvasSectionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CanvasSectionRepositoryImpl) Upsert(ctx context.Context, section *entity.CanvasSection) error {
	m := r.mapper.SectionToModel(section)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "thread_id"}, {Name: "section_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "plain_text", "status", "satisfaction", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*section = *r.mapper.SectionToEntity(m)
	return nil
}

func (r *CanvasSectionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CanvasSection{}, id).Error
}

func (r *CanvasSectionRepositoryImpl) DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("thread_id = ?", threadId).Delete(&model.CanvasSection{}).Error
}

func (r *CanvasSectionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CanvasSection, error) {
	var m model.CanvasSection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SectionToEntity(&m), nil
}

func (r *CanvasSectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CanvasSection, error) {
	var models []*model.CanvasSection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CanvasSection, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SectionToEntity(m)
	}
	return entities, nil
}

func (r *CanvasSectionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CanvasSection{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
