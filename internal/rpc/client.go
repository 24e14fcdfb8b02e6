package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"youapp-backend/internal/observability"
)

// defaultCallTimeout bounds a round trip when the caller supplies no deadline,
// so a hung downstream consumer cannot block a handler forever.
const defaultCallTimeout = 10 * time.Second

// Client issues request/reply calls to a service queue. Replies arrive on a
// single exclusive queue and are matched to callers by correlation id.
type Client struct {
	ch         *amqp.Channel
	queue      string
	replyQueue string

	mu      sync.Mutex
	pending map[string]chan []byte
}

// NewClient opens a channel on the connection and starts the reply consumer.
func NewClient(conn *amqp.Connection, queue string) (*Client, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	reply, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare reply queue: %w", err)
	}

	deliveries, err := ch.Consume(reply.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume reply queue: %w", err)
	}

	c := &Client{
		ch:         ch,
		queue:      queue,
		replyQueue: reply.Name,
		pending:    make(map[string]chan []byte),
	}
	go c.readReplies(deliveries)
	return c, nil
}

func (c *Client) readReplies(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		c.mu.Lock()
		waiter, ok := c.pending[d.CorrelationId]
		if ok {
			delete(c.pending, d.CorrelationId)
		}
		c.mu.Unlock()
		if ok {
			waiter <- d.Body
		}
	}
}

// Call publishes a request and blocks until the correlated reply arrives or
// the context ends. The reply body is unmarshaled into out when non-nil.
func (c *Client) Call(ctx context.Context, pattern string, data any, out any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
		defer cancel()
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal request data: %w", err)
	}
	body, err := json.Marshal(Request{Pattern: pattern, Data: raw})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	corrID := uuid.NewString()
	waiter := make(chan []byte, 1)
	c.mu.Lock()
	c.pending[corrID] = waiter
	c.mu.Unlock()

	err = c.ch.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: corrID,
		ReplyTo:       c.replyQueue,
		Body:          body,
	})
	if err != nil {
		c.forget(corrID)
		observability.IncRPCClient(pattern, "publish_error")
		return fmt.Errorf("publish %s: %w", pattern, err)
	}

	select {
	case reply := <-waiter:
		observability.IncRPCClient(pattern, "ok")
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(reply, out); err != nil {
			return fmt.Errorf("unmarshal %s reply: %w", pattern, err)
		}
		return nil
	case <-ctx.Done():
		c.forget(corrID)
		observability.IncRPCClient(pattern, "timeout")
		return fmt.Errorf("await %s reply: %w", pattern, ctx.Err())
	}
}

func (c *Client) forget(corrID string) {
	c.mu.Lock()
	delete(c.pending, corrID)
	c.mu.Unlock()
}

// Close releases the channel.
func (c *Client) Close() error {
	return c.ch.Close()
}
