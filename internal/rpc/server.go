package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"youapp-backend/internal/observability"
)

// HandlerFunc computes a reply for one inbound request. The returned value is
// marshaled as the reply body; error replies are ordinary values too, so a
// failed handler still answers and still acknowledges.
type HandlerFunc func(ctx context.Context, data json.RawMessage) any

// Server consumes a service queue and dispatches requests by pattern.
type Server struct {
	ch       *amqp.Channel
	queue    string
	handlers map[string]HandlerFunc
}

// NewServer opens a channel and declares the durable service queue.
func NewServer(conn *amqp.Connection, queue string) (*Server, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &Server{ch: ch, queue: queue, handlers: make(map[string]HandlerFunc)}, nil
}

// Handle registers the handler for a pattern. Must be called before Start.
func (s *Server) Handle(pattern string, fn HandlerFunc) {
	s.handlers[pattern] = fn
}

// Start begins consuming. Deliveries are processed one goroutine per message
// and acknowledged exactly once each, after the reply is computed.
func (s *Server) Start(ctx context.Context) error {
	deliveries, err := s.ch.Consume(s.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", s.queue, err)
	}

	go func() {
		for d := range deliveries {
			go s.dispatch(ctx, d)
		}
	}()
	log.Printf("rpc server consuming queue=%s patterns=%d", s.queue, len(s.handlers))
	return nil
}

func (s *Server) dispatch(ctx context.Context, d amqp.Delivery) {
	// Ack unconditionally once handling finishes so a throwing handler does
	// not turn the request into a poison message.
	defer func() {
		if err := d.Ack(false); err != nil {
			log.Printf("rpc ack failed: %v", err)
		}
	}()

	var req Request
	if err := json.Unmarshal(d.Body, &req); err != nil {
		log.Printf("rpc bad request body: %v", err)
		observability.IncRPCServer("unknown", "bad_request")
		return
	}

	fn, ok := s.handlers[req.Pattern]
	if !ok {
		log.Printf("rpc no handler for pattern=%s", req.Pattern)
		observability.IncRPCServer(req.Pattern, "no_handler")
		return
	}

	result := fn(ctx, req.Data)
	observability.IncRPCServer(req.Pattern, "handled")

	if d.ReplyTo == "" {
		return
	}
	body, err := json.Marshal(result)
	if err != nil {
		log.Printf("rpc marshal reply failed: %v", err)
		return
	}
	err = s.ch.PublishWithContext(ctx, "", d.ReplyTo, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: d.CorrelationId,
		Body:          body,
	})
	if err != nil {
		log.Printf("rpc reply publish failed: %v", err)
	}
}

// Close releases the channel.
func (s *Server) Close() error {
	return s.ch.Close()
}
