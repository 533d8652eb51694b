// Package rabbitmq publishes mail events for the external mailer.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// Mail templates understood by the mailer.
const (
	TemplateConfirm   = "confirm"
	TemplateConfirmed = "confirmed"
)

// MailEvent asks the mailer to render Template for one recipient.
type MailEvent struct {
	Template string `json:"template"`
	To       string `json:"to"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
}

// channel is the part of *amqp.Channel the client uses.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	log     *logrus.Logger
	mu      sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL       string
	MailQueue string
}

// NewClient connects to RabbitMQ and declares the durable mail queue.
func NewClient(cfg Config, log *logrus.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.MailQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", cfg.MailQueue, err)
	}

	log.WithField("queue", cfg.MailQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.MailQueue,
		log:     log,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishMail sends a persistent JSON message to the mail queue.
// Publishes are serialized on the shared channel.
func (c *Client) PublishMail(ctx context.Context, event MailEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal mail event: %w", err)
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         event.Template,
		})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish mail event: %w", err)
	}

	c.log.WithFields(logrus.Fields{"template": event.Template, "to": event.To}).Debug("mail event published")
	return nil
}

// LogPublisher stands in for the broker when no RabbitMQ URL is configured.
type LogPublisher struct {
	log *logrus.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishMail(_ context.Context, event MailEvent) error {
	p.log.WithFields(logrus.Fields{"template": event.Template, "to": event.To}).Info("mail event not sent, broker disabled")
	return nil
}
