package rabbitmq

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"youapp-backend/internal/telemetry"
)

// Dial connects to the broker. One connection per process is shared by the
// rpc client/server channels and the event publishers.
func Dial(url string) (*amqp.Connection, error) {
	return amqp.Dial(url)
}

// Publisher publishes audit events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// NewPublisher builds an audit publisher on the shared connection, or a noop
// publisher when the exchange cannot be set up.
func NewPublisher(conn *amqp.Connection, exchange string) Publisher {
	if conn == nil {
		log.Printf("audit publisher disabled, using noop: nil connection")
		return noopPublisher{reason: "nil connection"}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("audit publisher disabled, using noop: %v", err)
		return noopPublisher{reason: err.Error()}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		log.Printf("audit publisher disabled, using noop: %v", err)
		_ = ch.Close()
		return noopPublisher{reason: err.Error()}
	}

	log.Printf("audit publisher connected exchange=%s", exchange)
	return &amqpPublisher{ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Printf("audit publish failed: %v", err)
	}
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

type noopPublisher struct {
	reason string
}

func (noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	switch envelope := event.(type) {
	case telemetry.AuditEnvelope:
		log.Printf("audit noop publish routing_key=%s event_type=%s service=%s request_id=%s", routingKey, envelope.EventType, envelope.Service, envelope.RequestID)
	case *telemetry.AuditEnvelope:
		log.Printf("audit noop publish routing_key=%s event_type=%s service=%s request_id=%s", routingKey, envelope.EventType, envelope.Service, envelope.RequestID)
	default:
		log.Printf("audit noop publish routing_key=%s", routingKey)
	}
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
