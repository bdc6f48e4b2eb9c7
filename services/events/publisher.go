package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/vocalmail/voicestack/dto"
	"github.com/vocalmail/voicestack/interfaces"
	"github.com/vocalmail/voicestack/internal/logger"
	"github.com/vocalmail/voicestack/internal/tracing"
)

const (
	ExchangeVoicestack = "voicestack-events"
	ExchangeDeadLetter = "dead-letter"

	QueueVoicestack = "voicestack-events"
	DLQVoicestack   = QueueVoicestack + "-dlq"

	RoutingKeyDeadLetter     = "dead-letter"
	RoutingKeyAccountAdded   = "voicestack.account.added"
	RoutingKeyFaceRegistered = "voicestack.face.registered"
	RoutingKeyEmailSent      = "voicestack.email.sent"

	// After TTL the message moves to the DLQ.
	DefaultMessageTTL       = 240 * time.Hour
	DefaultMaxRetries       = 3
	DefaultPublishTimeout   = 5 * time.Second
	DefaultReconnectBackoff = time.Second
	MaxReconnectBackoff     = 30 * time.Second
)

// RabbitMQPublisher emits domain events on a topic exchange with publisher
// confirms. It reconnects with exponential backoff when the broker drops the
// connection.
type RabbitMQPublisher struct {
	connection      *amqp091.Connection
	connectionMutex sync.Mutex
	publishChannel  *amqp091.Channel
	publishMutex    sync.Mutex
	url             string
	log             logger.Logger
	confirms        chan amqp091.Confirmation
}

func NewRabbitMQPublisher(rabbitmqURL string, log logger.Logger) (interfaces.EventPublisher, error) {
	publisher := &RabbitMQPublisher{
		url: rabbitmqURL,
		log: log,
	}

	if err := publisher.connect(); err != nil {
		return nil, err
	}

	return publisher, nil
}

func (r *RabbitMQPublisher) PublishAccountAdded(ctx context.Context, event dto.AccountAddedEvent) error {
	return r.publishMessage(ctx, event, RoutingKeyAccountAdded)
}

func (r *RabbitMQPublisher) PublishFaceRegistered(ctx context.Context, event dto.FaceRegisteredEvent) error {
	return r.publishMessage(ctx, event, RoutingKeyFaceRegistered)
}

func (r *RabbitMQPublisher) PublishEmailSent(ctx context.Context, event dto.EmailSentEvent) error {
	return r.publishMessage(ctx, event, RoutingKeyEmailSent)
}

func (r *RabbitMQPublisher) connect() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	r.connection, err = amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	if err := r.setupExchangesAndQueues(); err != nil {
		return errors.Wrap(err, "Failed to setup exchanges and queues")
	}

	if err := r.setupPublishChannel(); err != nil {
		return errors.Wrap(err, "Failed to setup publish channel")
	}

	go r.handleReconnection()

	return nil
}

func (r *RabbitMQPublisher) setupPublishChannel() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open publish channel")
	}

	// Enable publisher confirms
	if err := channel.Confirm(false); err != nil {
		channel.Close()
		return errors.Wrap(err, "Failed to enable publisher confirms")
	}

	r.confirms = channel.NotifyPublish(make(chan amqp091.Confirmation, 1))
	r.publishChannel = channel
	return nil
}

func (r *RabbitMQPublisher) setupExchangesAndQueues() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open channel for exchange/queue setup")
	}
	defer channel.Close()

	err = channel.ExchangeDeclare(
		ExchangeDeadLetter,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return errors.Wrap(err, "Failed to declare dead letter exchange")
	}

	err = channel.ExchangeDeclare(
		ExchangeVoicestack,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Failed to declare voicestack exchange")
	}

	_, err = channel.QueueDeclare(
		DLQVoicestack,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "Failed to declare DLQ %s", DLQVoicestack)
	}

	err = channel.QueueBind(
		DLQVoicestack,
		RoutingKeyDeadLetter,
		ExchangeDeadLetter,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "Failed to bind DLQ %s to exchange", DLQVoicestack)
	}

	args := make(map[string]interface{})
	args["x-dead-letter-exchange"] = ExchangeDeadLetter
	args["x-dead-letter-routing-key"] = RoutingKeyDeadLetter
	args["x-message-ttl"] = int64(DefaultMessageTTL.Milliseconds())

	_, err = channel.QueueDeclare(
		QueueVoicestack,
		true,
		false,
		false,
		false,
		args,
	)
	if err != nil {
		return errors.Wrapf(err, "Failed to declare queue %s", QueueVoicestack)
	}

	err = channel.QueueBind(
		QueueVoicestack,
		"voicestack.#",
		ExchangeVoicestack,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "Failed to bind queue %s to exchange %s", QueueVoicestack, ExchangeVoicestack)
	}

	return nil
}

func (r *RabbitMQPublisher) handleReconnection() {
	backoff := DefaultReconnectBackoff

	for {
		notifyClose := r.connection.NotifyClose(make(chan *amqp091.Error))
		err := <-notifyClose
		r.log.Warnf("RabbitMQ connection closed: %v, attempting to reconnect", err)

		for {
			err := r.connect()
			if err == nil {
				r.log.Info("Successfully reconnected to RabbitMQ")
				break
			}

			r.log.Errorf("Failed to reconnect: %v, retrying in %v", err, backoff)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > MaxReconnectBackoff {
				backoff = MaxReconnectBackoff
			}
		}

		backoff = DefaultReconnectBackoff
	}
}

func (r *RabbitMQPublisher) ensureConnectionAndChannel() error {
	if r.connection == nil || r.connection.IsClosed() {
		if err := r.connect(); err != nil {
			return errors.Wrap(err, "Failed to establish connection")
		}
	}

	if r.publishChannel == nil || r.publishChannel.IsClosed() {
		if err := r.setupPublishChannel(); err != nil {
			return errors.Wrap(err, "Failed to establish channel")
		}
	}

	return nil
}

func (r *RabbitMQPublisher) publishMessage(ctx context.Context, message interface{}, routingKey string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.publishMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("routing_key", routingKey)

	for attempt := 0; attempt < DefaultMaxRetries; attempt++ {
		err := r.publishWithConfirm(ctx, message, routingKey)
		if err == nil {
			return nil
		}

		r.log.Warnf("Publish attempt %d failed: %v", attempt+1, err)
		if attempt < DefaultMaxRetries-1 {
			time.Sleep(time.Millisecond * 100 * time.Duration(attempt+1))
		}
	}

	err := errors.New("Failed to publish message after all retries")
	tracing.TraceErr(span, err)
	return err
}

func (r *RabbitMQPublisher) publishWithConfirm(ctx context.Context, message interface{}, routingKey string) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := r.ensureConnectionAndChannel(); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal message")
	}

	err = r.publishChannel.Publish(
		ExchangeVoicestack,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Body:         jsonBody,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return errors.Wrap(err, "Failed to publish message")
	}

	select {
	case confirm := <-r.confirms:
		if !confirm.Ack {
			return errors.New("Message was not confirmed by server")
		}
	case <-time.After(DefaultPublishTimeout):
		return errors.New("Publish confirmation timeout")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Close gracefully shuts down the publisher.
func (r *RabbitMQPublisher) Close() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	if r.publishChannel != nil {
		err = r.publishChannel.Close()
		if err != nil {
			r.log.Errorf("Error closing publish channel: %v", err)
		}
	}

	if r.connection != nil {
		if closeErr := r.connection.Close(); closeErr != nil {
			r.log.Errorf("Error closing connection: %v", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}

	return err
}
