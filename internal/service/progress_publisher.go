package service

import (
	"context"
	"encoding/json"

	"ai-canvas-be/internal/model"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IProgressPublisher interface {
	Publish(ctx context.Context, event model.ProgressEvent) error
}

// progressPublisher puts progress events on the in-process bus. The
// consumer service fans them out to websockets and NATS, keeping the
// request path free of delivery latency.
type progressPublisher struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewProgressPublisher(topicName string, pubSub *gochannel.GoChannel) IProgressPublisher {
	return &progressPublisher{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *progressPublisher) Publish(ctx context.Context, event model.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.pubSub.Publish(p.topicName, msg)
}
