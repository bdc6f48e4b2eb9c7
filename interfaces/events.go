package interfaces

import (
	"context"

	"github.com/vocalmail/voicestack/dto"
)

// EventPublisher emits domain events to the message bus. A no-op
// implementation is wired when no broker is configured; publish failures
// never fail the request that produced the event.
type EventPublisher interface {
	PublishAccountAdded(ctx context.Context, event dto.AccountAddedEvent) error
	PublishFaceRegistered(ctx context.Context, event dto.FaceRegisteredEvent) error
	PublishEmailSent(ctx context.Context, event dto.EmailSentEvent) error
	Close() error
}
