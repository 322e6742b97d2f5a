package service

import (
	"context"
	"encoding/json"

	"ai-canvas-be/internal/constant"
	"ai-canvas-be/internal/model"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/websocket"
	"ai-canvas-be/pkg/events"
	pktNats "ai-canvas-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process progress topic and fans each
// event out: websocket push to the owning user, NATS mirror for
// external consumers.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		natsPub:   natsPub,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event model.ProgressEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal progress event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.hub != nil {
		cs.hub.Send(event.UserId, event)
	}

	if cs.natsPub != nil {
		evt := cs.toBusEvent(event)
		if err := cs.natsPub.Publish(ctx, evt); err != nil {
			cs.logger.Warn("Consumer", "NATS mirror publish failed", map[string]interface{}{
				"error":     err.Error(),
				"thread_id": event.ThreadId,
			})
			// Websocket delivery already happened; do not retry the whole message.
		}
	}

	cs.logger.Info("Consumer", "Progress event delivered", map[string]interface{}{
		"event":      event.Event,
		"thread_id":  event.ThreadId,
		"section_id": event.SectionId,
	})
	msg.Ack()
}

func (cs *consumerService) toBusEvent(event model.ProgressEvent) events.Event {
	if event.Event == constant.EventCanvasCompleted {
		return events.NewCanvasCompleted(event.UserId.String(), event.ThreadId.String(), event.Total)
	}
	return events.NewSectionSaved(
		event.UserId.String(),
		event.ThreadId.String(),
		event.SectionId,
		event.Status,
		event.Completed,
		event.Total,
	)
}
