package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chachabrian/homefix-backend/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errPublisherClosed = errors.New("amqp publisher closed")

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	IsClosed() bool
	Close() error
}

type amqpConn interface {
	OpenChannel() (amqpChannel, error)
	IsClosed() bool
	Close() error
}

type amqpDialer func(url string) (amqpConn, error)

type amqpConnection struct{ *amqp.Connection }

func (c amqpConnection) OpenChannel() (amqpChannel, error) {
	ch, err := c.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (amqpConn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// AMQPPublisher publishes booking events to a topic exchange, routed by
// event type (booking.created, booking.completed, ...). A channel or
// connection closed by the broker is reopened on the next delivery.
type AMQPPublisher struct {
	url      string
	exchange string
	dial     amqpDialer
	log      *slog.Logger

	mu     sync.Mutex
	conn   amqpConn
	ch     amqpChannel
	closed bool
}

func NewAMQPPublisher(url, exchange string, log *slog.Logger) (*AMQPPublisher, error) {
	return newAMQPPublisher(url, exchange, log, dialAMQP)
}

func newAMQPPublisher(url, exchange string, log *slog.Logger, dial amqpDialer) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchange: exchange, dial: dial, log: log}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.channel(); err != nil {
		if p.conn != nil {
			_ = p.conn.Close()
		}
		return nil, err
	}
	return p, nil
}

// channel returns the open channel, redialling and redeclaring the exchange
// as needed. p.mu must be held.
func (p *AMQPPublisher) channel() (amqpChannel, error) {
	if p.closed {
		return nil, errPublisherClosed
	}
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.ch = nil

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := p.dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		p.conn = conn
	}

	ch, err := p.conn.OpenChannel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	go p.watch(ch, ch.NotifyClose(make(chan *amqp.Error, 1)))
	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) watch(ch amqpChannel, closed chan *amqp.Error) {
	amqpErr, ok := <-closed

	p.mu.Lock()
	if p.ch == ch {
		p.ch = nil
	}
	shutdown := p.closed
	p.mu.Unlock()

	if ok && amqpErr != nil && !shutdown {
		p.log.Warn("rabbitmq channel closed, reopening on next publish",
			"exchange", p.exchange, "code", amqpErr.Code, "reason", amqpErr.Reason)
	}
}

func (p *AMQPPublisher) Name() string { return "amqp" }

func (p *AMQPPublisher) Deliver(ctx context.Context, e models.BookingEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, string(e.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    fmt.Sprintf("%s:%s", e.Type, e.Booking.ID),
		Timestamp:    e.At,
		Body:         body,
	})
	if err != nil && ch.IsClosed() {
		p.ch = nil
	}
	return err
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
