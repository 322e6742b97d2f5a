package sectionstore

import (
	"context"
	"fmt"
	"time"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/document"
	"ai-canvas-be/pkg/canvas/store"

	"github.com/google/uuid"
)

// GormStore backs the orchestrator's section and deliverable stores
// with the canvas tables.
type GormStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewGormStore(uowFactory unitofwork.RepositoryFactory) *GormStore {
	return &GormStore{
		uowFactory: uowFactory,
	}
}

var _ store.SectionStore = (*GormStore)(nil)
var _ store.DeliverableStore = (*GormStore)(nil)

func (s *GormStore) SaveSection(ctx context.Context, rec store.SectionRecord) error {
	userId, threadId, err := parseKeys(rec.UserID, rec.ThreadID)
	if err != nil {
		return err
	}

	content, err := rec.Content.JSON()
	if err != nil {
		return fmt.Errorf("serialize section content: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CanvasSectionRepository().Upsert(ctx, &entity.CanvasSection{
		Id:           uuid.New(),
		ThreadId:     threadId,
		UserId:       userId,
		SectionId:    string(rec.SectionID),
		Content:      content,
		PlainText:    rec.PlainText,
		Status:       string(rec.Status),
		Satisfaction: rec.Satisfaction,
		CreatedAt:    time.Now(),
	})
}

func (s *GormStore) GetSection(ctx context.Context, userID, threadID string, sectionID catalog.SectionID) (*store.SectionRecord, error) {
	_, threadId, err := parseKeys(userID, threadID)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sec, err := uow.CanvasSectionRepository().FindOne(ctx,
		specification.ByThreadID{ThreadID: threadId},
		specification.BySectionID{SectionID: string(sectionID)},
	)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, nil
	}

	doc, err := document.Parse(sec.Content)
	if err != nil {
		return nil, fmt.Errorf("section %s of thread %s: %w", sectionID, threadID, err)
	}

	return &store.SectionRecord{
		UserID:       sec.UserId.String(),
		ThreadID:     sec.ThreadId.String(),
		SectionID:    catalog.SectionID(sec.SectionId),
		Content:      doc,
		PlainText:    sec.PlainText,
		Status:       catalog.SectionStatus(sec.Status),
		Satisfaction: sec.Satisfaction,
	}, nil
}

func (s *GormStore) SaveDeliverable(ctx context.Context, userID, threadID, content string) error {
	userId, threadId, err := parseKeys(userID, threadID)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CanvasDeliverableRepository().Upsert(ctx, &entity.CanvasDeliverable{
		Id:        uuid.New(),
		ThreadId:  threadId,
		UserId:    userId,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

func (s *GormStore) GetDeliverable(ctx context.Context, userID, threadID string) (string, error) {
	_, threadId, err := parseKeys(userID, threadID)
	if err != nil {
		return "", err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	d, err := uow.CanvasDeliverableRepository().FindOne(ctx,
		specification.ByThreadID{ThreadID: threadId},
	)
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", nil
	}
	return d.Content, nil
}

func parseKeys(userID, threadID string) (uuid.UUID, uuid.UUID, error) {
	userId, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	threadId, err := uuid.Parse(threadID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid thread id %q: %w", threadID, err)
	}
	return userId, threadId, nil
}
