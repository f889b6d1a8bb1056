package whitelist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Event is emitted when a resident becomes eligible for access to the
// Minecraft server.
type Event struct {
	Type              string    `json:"type"`
	RequestID         string    `json:"requestId"`
	MinecraftUsername string    `json:"minecraftUsername"`
	DiscordUsername   string    `json:"discordUsername"`
	Building          string    `json:"building"`
	OccurredAt        time.Time `json:"occurredAt"`
}

const EventApproved = "whitelist.approved"

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop logs events when no broker is configured.
type Noop struct {
	Log *zap.Logger
}

func (n Noop) Publish(ctx context.Context, event Event) error {
	if n.Log != nil {
		n.Log.Info("whitelist event (no broker)", zap.String("type", event.Type), zap.String("minecraft_username", event.MinecraftUsername))
	}
	return nil
}

func (n Noop) Close() error { return nil }

// AMQPPublisher publishes events to a durable fanout exchange so the game
// server plugin and any other consumer get their own copy.
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("reopen channel: %w", err)
		}
		p.ch = ch
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.RequestID,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	return p.conn.Close()
}
