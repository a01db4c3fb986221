package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/order"
)

const (
	OrderCreatedQueue       = "order.created"
	OrderCancelledQueue     = "order.cancelled"
	OrderStatusChangedQueue = "order.statuschanged"
)

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare queues so publish never fails due to missing infra
	for _, q := range []string{OrderCreatedQueue, OrderCancelledQueue, OrderStatusChangedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare %s: %w", q, err)
		}
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) OrderCreated(ctx context.Context, o *order.Order) error {
	n := Notification{
		Type:       TypeOrder,
		CustomerID: o.CustomerID,
		OrderID:    o.ID,
		Summary:    fmt.Sprintf("order %s created with %d items, total %.2f", o.ID, len(o.Items), o.Total),
		Timestamp:  time.Now().UTC(),
	}
	return p.publishJSON(ctx, OrderCreatedQueue, n)
}

func (p *Publisher) OrderCancelled(ctx context.Context, o *order.Order) error {
	n := Notification{
		Type:       TypeCancel,
		CustomerID: o.CustomerID,
		OrderID:    o.ID,
		Summary:    fmt.Sprintf("order %s cancelled", o.ID),
		Timestamp:  time.Now().UTC(),
	}
	return p.publishJSON(ctx, OrderCancelledQueue, n)
}

func (p *Publisher) StatusChanged(ctx context.Context, o *order.Order, from order.Status) error {
	n := Notification{
		Type:       TypeOrder,
		CustomerID: o.CustomerID,
		OrderID:    o.ID,
		Summary:    fmt.Sprintf("order %s moved from %s to %s", o.ID, from, o.Status),
		Timestamp:  time.Now().UTC(),
	}
	return p.publishJSON(ctx, OrderStatusChangedQueue, n)
}

func (p *Publisher) publishJSON(ctx context.Context, queue string, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",    // default exchange
		queue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
