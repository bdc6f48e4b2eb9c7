package events

import (
	"context"

	"github.com/vocalmail/voicestack/dto"
	"github.com/vocalmail/voicestack/interfaces"
)

// noopPublisher is wired when no broker URL is configured.
type noopPublisher struct{}

func NewNoopPublisher() interfaces.EventPublisher {
	return &noopPublisher{}
}

func (p *noopPublisher) PublishAccountAdded(ctx context.Context, event dto.AccountAddedEvent) error {
	return nil
}

func (p *noopPublisher) PublishFaceRegistered(ctx context.Context, event dto.FaceRegisteredEvent) error {
	return nil
}

func (p *noopPublisher) PublishEmailSent(ctx context.Context, event dto.EmailSentEvent) error {
	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
