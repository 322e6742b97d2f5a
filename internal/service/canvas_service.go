package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-canvas-be/internal/constant"
	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/model"
	"ai-canvas-be/internal/repository/memory"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/executor"
	"ai-canvas-be/pkg/canvas/state"
	"ai-canvas-be/pkg/canvas/store"

	"github.com/google/uuid"
)

// ICanvasService defines the canvas orchestration service interface
type ICanvasService interface {
	CreateThread(ctx context.Context, userId uuid.UUID) (*dto.CreateThreadResponse, error)
	GetAllThreads(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllThreadsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, threadId uuid.UUID, limit, offset int) ([]*dto.GetChatHistoryResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetProgress(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) (*dto.GetProgressResponse, error)
	GetDeliverable(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) (*dto.GetDeliverableResponse, error)
	DeleteThread(ctx context.Context, userId uuid.UUID, request *dto.DeleteThreadRequest) error
}

// canvasService glues the turn pipeline to persistence and delivery.
type canvasService struct {
	uowFactory       unitofwork.RepositoryFactory
	catalog          *catalog.Catalog
	executor         *executor.Executor
	stateRepo        *memory.StateRepository
	sectionStore     store.SectionStore
	deliverableStore store.DeliverableStore
	publisher        IProgressPublisher
	llmLogger        *log.Logger
}

func NewCanvasService(
	uowFactory unitofwork.RepositoryFactory,
	cat *catalog.Catalog,
	exec *executor.Executor,
	stateRepo *memory.StateRepository,
	sectionStore store.SectionStore,
	deliverableStore store.DeliverableStore,
	publisher IProgressPublisher,
	pipelineLogger *log.Logger,
) ICanvasService {
	return &canvasService{
		uowFactory:       uowFactory,
		catalog:          cat,
		executor:         exec,
		stateRepo:        stateRepo,
		sectionStore:     sectionStore,
		deliverableStore: deliverableStore,
		publisher:        publisher,
		llmLogger:        pipelineLogger,
	}
}

// InitPipelineLogger opens the dedicated pipeline log file. Falls back
// to stdout when the logs directory cannot be created.
func InitPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "canvas_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[CANVAS] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// CreateThread opens a new canvas conversation with its greeting.
func (cs *canvasService) CreateThread(ctx context.Context, userId uuid.UUID) (*dto.CreateThreadResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	thread := entity.CanvasThread{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultThreadTitle,
		CreatedAt: now,
	}

	greeting := entity.CanvasMessage{
		Id:        uuid.New(),
		Chat:      constant.ThreadGreetingMessage,
		Role:      constant.ChatMessageRoleModel,
		ThreadId:  thread.Id,
		CreatedAt: now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CanvasThreadRepository().Create(ctx, &thread); err != nil {
		return nil, err
	}
	if err := uow.CanvasMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.stateRepo.Save(state.New(userId.String(), thread.Id.String()))

	return &dto.CreateThreadResponse{
		Id:       thread.Id,
		Greeting: greeting.Chat,
	}, nil
}

// GetAllThreads lists the user's canvases, newest first.
func (cs *canvasService) GetAllThreads(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllThreadsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	threads, err := uow.CanvasThreadRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllThreadsResponse, 0, len(threads))
	for _, t := range threads {
		response = append(response, &dto.GetAllThreadsResponse{
			Id:        t.Id,
			Title:     t.Title,
			Finished:  t.Finished,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	}

	return response, nil
}

// GetChatHistory returns the durable message log of a thread, oldest
// first. A positive limit pages the log; zero returns everything.
func (cs *canvasService) GetChatHistory(ctx context.Context, userId uuid.UUID, threadId uuid.UUID, limit, offset int) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	thread, err := cs.verifyThread(ctx, uow, userId, threadId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.CanvasMessageRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: thread.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			SectionId: msg.SectionId,
			CreatedAt: msg.CreatedAt,
		})
	}

	return resp, nil
}

// SendMessage runs one full turn of the canvas pipeline.
func (cs *canvasService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	thread, err := cs.verifyThread(ctx, uow, userId, request.ThreadId)
	if err != nil {
		return nil, err
	}

	st := cs.loadState(ctx, userId, thread)

	doneBefore := cs.doneSet(st)

	result := cs.executor.Execute(ctx, st, request.Message)
	cs.stateRepo.Save(st)

	if err := cs.persistTurn(ctx, uow, thread, st, request.Message, result); err != nil {
		// The turn already ran; losing the durable log entry is bad but
		// state and sections survive. Surface the failure in the logs only.
		cs.llmLogger.Printf("[SERVICE] Failed to persist turn for thread %s: %v", thread.Id, err)
	}

	cs.publishProgress(ctx, userId, request.ThreadId, st, doneBefore, result)

	progress := make([]dto.SectionProgressDTO, 0, len(result.Snapshot))
	for i, row := range result.Snapshot {
		progress = append(progress, dto.SectionProgressDTO{
			SectionId: string(row.SectionID),
			Name:      row.Name,
			Order:     i + 1,
			Status:    string(row.Status),
		})
	}

	return &dto.SendMessageResponse{
		ThreadId:    request.ThreadId,
		Reply:       result.Reply,
		Finished:    result.Finished,
		Deliverable: result.Deliverable,
		Progress:    progress,
	}, nil
}

// GetProgress returns the per-section status snapshot.
func (cs *canvasService) GetProgress(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) (*dto.GetProgressResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	thread, err := cs.verifyThread(ctx, uow, userId, threadId)
	if err != nil {
		return nil, err
	}

	st := cs.loadState(ctx, userId, thread)

	sections := make([]dto.SectionProgressDTO, 0, cs.catalog.Len())
	for i, row := range st.Snapshot(cs.catalog) {
		sections = append(sections, dto.SectionProgressDTO{
			SectionId: string(row.SectionID),
			Name:      row.Name,
			Order:     i + 1,
			Status:    string(row.Status),
		})
	}

	return &dto.GetProgressResponse{
		ThreadId:  threadId,
		Finished:  st.Finished,
		Completed: st.CompletedCount(),
		Total:     cs.catalog.Len(),
		Sections:  sections,
	}, nil
}

// GetDeliverable returns the synthesized document, if one exists yet.
func (cs *canvasService) GetDeliverable(ctx context.Context, userId uuid.UUID, threadId uuid.UUID) (*dto.GetDeliverableResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifyThread(ctx, uow, userId, threadId); err != nil {
		return nil, err
	}

	content, err := cs.deliverableStore.GetDeliverable(ctx, userId.String(), threadId.String())
	if err != nil {
		return nil, err
	}
	if content == "" {
		if st, ok := cs.stateRepo.Get(threadId.String()); ok {
			content = st.Deliverable
		}
	}
	if content == "" {
		return nil, fmt.Errorf("canvas is not finished yet")
	}

	return &dto.GetDeliverableResponse{
		ThreadId: threadId,
		Content:  content,
	}, nil
}

// DeleteThread removes the thread with its messages, sections and
// deliverable.
func (cs *canvasService) DeleteThread(ctx context.Context, userId uuid.UUID, request *dto.DeleteThreadRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	thread, err := cs.verifyThread(ctx, uow, userId, request.ThreadId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CanvasMessageRepository().DeleteByThreadId(ctx, thread.Id); err != nil {
		return err
	}
	if err := uow.CanvasSectionRepository().DeleteByThreadId(ctx, thread.Id); err != nil {
		return err
	}
	deliverable, err := uow.CanvasDeliverableRepository().FindOne(ctx, specification.ByThreadID{ThreadID: thread.Id})
	if err != nil {
		return err
	}
	if deliverable != nil {
		if err := uow.CanvasDeliverableRepository().Delete(ctx, deliverable.Id); err != nil {
			return err
		}
	}
	if err := uow.CanvasThreadRepository().Delete(ctx, thread.Id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	cs.stateRepo.Delete(thread.Id.String())
	return nil
}

func (cs *canvasService) verifyThread(ctx context.Context, uow unitofwork.UnitOfWork, userId, threadId uuid.UUID) (*entity.CanvasThread, error) {
	thread, err := uow.CanvasThreadRepository().FindOne(ctx,
		specification.ByID{ID: threadId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, fmt.Errorf("thread not found or access denied")
	}
	return thread, nil
}

// loadState returns the cached conversation state or rebuilds it from
// the database after an eviction or restart.
func (cs *canvasService) loadState(ctx context.Context, userId uuid.UUID, thread *entity.CanvasThread) *state.ConversationState {
	if st, ok := cs.stateRepo.Get(thread.Id.String()); ok {
		return st
	}

	st := state.New(userId.String(), thread.Id.String())

	for _, id := range cs.catalog.Order() {
		rec, err := cs.sectionStore.GetSection(ctx, st.UserID, st.ThreadID, id)
		if err != nil {
			cs.llmLogger.Printf("[SERVICE] Recovery read failed for section %s of thread %s: %v", id, thread.Id, err)
			continue
		}
		if rec == nil {
			continue
		}
		st.SectionStates[id] = &state.SectionState{
			SectionID:    id,
			Content:      rec.Content,
			PlainText:    rec.PlainText,
			Status:       rec.Status,
			Satisfaction: rec.Satisfaction,
		}
	}

	if thread.Finished {
		st.Finished = true
		if content, err := cs.deliverableStore.GetDeliverable(ctx, st.UserID, st.ThreadID); err == nil {
			st.Deliverable = content
		}
	}

	cs.llmLogger.Printf("[SERVICE] State recovered for thread %s (%d sections restored)", thread.Id, len(st.SectionStates))
	cs.stateRepo.Save(st)
	return st
}

// persistTurn writes the user and assistant messages and refreshes the
// thread row.
func (cs *canvasService) persistTurn(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	thread *entity.CanvasThread,
	st *state.ConversationState,
	userMessage string,
	result executor.Result,
) error {
	existing, err := uow.CanvasMessageRepository().Count(ctx, specification.ByThreadID{ThreadID: thread.Id})
	if err != nil {
		return err
	}

	now := time.Now()
	userMsg := entity.CanvasMessage{
		Id:        uuid.New(),
		Chat:      userMessage,
		Role:      constant.ChatMessageRoleUser,
		ThreadId:  thread.Id,
		SectionId: string(st.CurrentSection),
		CreatedAt: now,
	}
	replyMsg := entity.CanvasMessage{
		Id:            uuid.New(),
		Chat:          result.Reply,
		Role:          constant.ChatMessageRoleModel,
		ThreadId:      thread.Id,
		SectionId:     string(st.CurrentSection),
		TriggeredSave: lastReplyTriggeredSave(st),
		CreatedAt:     now.Add(1 * time.Second),
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CanvasMessageRepository().Create(ctx, &userMsg); err != nil {
		return err
	}
	if err := uow.CanvasMessageRepository().Create(ctx, &replyMsg); err != nil {
		return err
	}

	// The greeting is the only message before the first user turn.
	if existing == 1 {
		thread.Title = threadTitleFrom(userMessage)
	}
	thread.Finished = result.Finished
	if err := uow.CanvasThreadRepository().Update(ctx, thread); err != nil {
		return err
	}

	return uow.Commit()
}

func lastReplyTriggeredSave(st *state.ConversationState) bool {
	for i := len(st.History) - 1; i >= 0; i-- {
		if st.History[i].Role == "assistant" {
			return st.History[i].TriggeredSave
		}
	}
	return false
}

func threadTitleFrom(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if len(title) > 60 {
		title = title[:60]
	}
	if title == "" {
		return constant.DefaultThreadTitle
	}
	return title
}

func (cs *canvasService) doneSet(st *state.ConversationState) map[catalog.SectionID]bool {
	done := make(map[catalog.SectionID]bool)
	for id, sec := range st.SectionStates {
		if sec.Status == catalog.StatusDone {
			done[id] = true
		}
	}
	return done
}

// publishProgress emits one event per newly completed section and a
// completion event when the deliverable was synthesized this turn.
func (cs *canvasService) publishProgress(
	ctx context.Context,
	userId uuid.UUID,
	threadId uuid.UUID,
	st *state.ConversationState,
	doneBefore map[catalog.SectionID]bool,
	result executor.Result,
) {
	if cs.publisher == nil {
		return
	}

	total := cs.catalog.Len()
	completed := st.CompletedCount()

	for id, sec := range st.SectionStates {
		if sec.Status != catalog.StatusDone || doneBefore[id] {
			continue
		}
		evt := model.ProgressEvent{
			ThreadId:   threadId,
			UserId:     userId,
			SectionId:  string(id),
			Status:     string(catalog.StatusDone),
			Event:      constant.EventSectionSaved,
			Completed:  completed,
			Total:      total,
			OccurredAt: time.Now(),
		}
		if err := cs.publisher.Publish(ctx, evt); err != nil {
			cs.llmLogger.Printf("[SERVICE] Progress publish failed for thread %s: %v", threadId, err)
		}
	}

	if result.Finished && result.Deliverable != "" {
		evt := model.ProgressEvent{
			ThreadId:   threadId,
			UserId:     userId,
			Event:      constant.EventCanvasCompleted,
			Completed:  completed,
			Total:      total,
			OccurredAt: time.Now(),
		}
		if err := cs.publisher.Publish(ctx, evt); err != nil {
			cs.llmLogger.Printf("[SERVICE] Completion publish failed for thread %s: %v", threadId, err)
		}
	}
}
