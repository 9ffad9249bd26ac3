package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"bizplan/internal/log"
	"bizplan/internal/models"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher sends changes to a durable direct exchange. The routing key
// is the change kind, so consumers can bind to the kinds they care about.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *log.Logger

	// amqp091 channels are not safe for concurrent publishing
	mu sync.Mutex
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(url, exchange string, logger *log.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		logger:   logger.WithComponent(log.ComponentEvents),
	}, nil
}

// Publish sends one persistent JSON message
func (p *AMQPPublisher) Publish(ctx context.Context, c models.Change) error {
	body, err := NewMessage(c).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,     // exchange
		string(c.Kind), // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    c.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", c.Kind, err)
	}

	p.logger.DebugContext(ctx, "published change",
		log.FieldChange, c.Kind,
		log.FieldScenario, c.Scenario,
		"exchange", p.exchange)
	return nil
}

// Close shuts down the channel and connection
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
