package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateThreadResponse struct {
	Id       uuid.UUID `json:"id"`
	Greeting string    `json:"greeting"`
}

type GetAllThreadsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Finished  bool       `json:"finished"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	SectionId string    `json:"section_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	ThreadId uuid.UUID `json:"thread_id" validate:"required"`
	Message  string    `json:"message" validate:"required,max=8000"`
}

type SectionProgressDTO struct {
	SectionId string `json:"section_id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	Status    string `json:"status"`
}

type SendMessageResponse struct {
	ThreadId    uuid.UUID            `json:"thread_id"`
	Reply       string               `json:"reply"`
	Finished    bool                 `json:"finished"`
	Deliverable string               `json:"deliverable,omitempty"`
	Progress    []SectionProgressDTO `json:"progress"`
}

type GetProgressResponse struct {
	ThreadId  uuid.UUID            `json:"thread_id"`
	Finished  bool                 `json:"finished"`
	Completed int                  `json:"completed"`
	Total     int                  `json:"total"`
	Sections  []SectionProgressDTO `json:"sections"`
}

type GetDeliverableResponse struct {
	ThreadId uuid.UUID `json:"thread_id"`
	Content  string    `json:"content"`
}

type DeleteThreadRequest struct {
	ThreadId uuid.UUID `json:"thread_id" validate:"required"`
}
