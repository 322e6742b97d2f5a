package mapper

import (
	"time"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CanvasMapper struct{}

func NewCanvasMapper() *CanvasMapper {
	return &CanvasMapper{}
}

// Thread Mappers

func (m *CanvasMapper) ThreadToEntity(t *model.CanvasThread) *entity.CanvasThread {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		dt := t.DeletedAt.Time
		deletedAt = &dt
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		ut := t.UpdatedAt
		updatedAt = &ut
	}

	return &entity.CanvasThread{
		Id:        t.Id,
		UserId:    t.UserId,
		Title:     t.Title,
		Finished:  t.Finished,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: t.DeletedAt.Valid,
	}
}

func (m *CanvasMapper) ThreadToModel(t *entity.CanvasThread) *model.CanvasThread {
	if t == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.CanvasThread{
		Id:        t.Id,
		UserId:    t.UserId,
		Title:     t.Title,
		Finished:  t.Finished,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Section Mappers

func (m *CanvasMapper) SectionToEntity(s *model.CanvasSection) *entity.CanvasSection {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		dt := s.DeletedAt.Time
		deletedAt = &dt
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		ut := s.UpdatedAt
		updatedAt = &ut
	}

	return &entity.CanvasSection{
		Id:           s.Id,
		ThreadId:     s.ThreadId,
		UserId:       s.UserId,
		SectionId:    s.SectionId,
		Content:      []byte(s.Content),
		PlainText:    s.PlainText,
		Status:       s.Status,
		Satisfaction: s.Satisfaction,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    s.DeletedAt.Valid,
	}
}

func (m *CanvasMapper) SectionToModel(s *entity.CanvasSection) *model.CanvasSection {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.CanvasSection{
		Id:           s.Id,
		ThreadId:     s.ThreadId,
		UserId:       s.UserId,
		SectionId:    s.SectionId,
		Content:      datatypes.JSON(s.Content),
		PlainText:    s.PlainText,
		Status:       s.Status,
		Satisfaction: s.Satisfaction,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

// Message Mappers

func (m *CanvasMapper) MessageToEntity(msg *model.CanvasMessage) *entity.CanvasMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		dt := msg.DeletedAt.Time
		deletedAt = &dt
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		ut := msg.UpdatedAt
		updatedAt = &ut
	}

	return &entity.CanvasMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ThreadId:      msg.ThreadId,
		SectionId:     msg.SectionId,
		TriggeredSave: msg.TriggeredSave,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     msg.DeletedAt.Valid,
	}
}

func (m *CanvasMapper) MessageToModel(msg *entity.CanvasMessage) *model.CanvasMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.CanvasMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ThreadId:      msg.ThreadId,
		SectionId:     msg.SectionId,
		TriggeredSave: msg.TriggeredSave,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

// Deliverable Mappers

func (m *CanvasMapper) DeliverableToEntity(d *model.CanvasDeliverable) *entity.CanvasDeliverable {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		dt := d.DeletedAt.Time
		deletedAt = &dt
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		ut := d.UpdatedAt
		updatedAt = &ut
	}

	return &entity.CanvasDeliverable{
		Id:        d.Id,
		ThreadId:  d.ThreadId,
		UserId:    d.UserId,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: d.DeletedAt.Valid,
	}
}

func (m *CanvasMapper) DeliverableToModel(d *entity.CanvasDeliverable) *model.CanvasDeliverable {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.CanvasDeliverable{
		Id:        d.Id,
		ThreadId:  d.ThreadId,
		UserId:    d.UserId,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}
