package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chachabrian/homefix-backend/internal/logger"
	"github.com/chachabrian/homefix-backend/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAMQPChannel struct {
	mu        sync.Mutex
	closed    bool
	declared  []string
	keys      []string
	published []amqp.Publishing
	notify    []chan *amqp.Error
}

func (c *fakeAMQPChannel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.declared = append(c.declared, name)
	return nil
}

func (c *fakeAMQPChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return amqp.ErrClosed
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeAMQPChannel) NotifyClose(ch chan *amqp.Error) chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = append(c.notify, ch)
	return ch
}

func (c *fakeAMQPChannel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeAMQPChannel) Close() error {
	c.shutdown(nil)
	return nil
}

// shutdown mimics the broker closing the channel.
func (c *fakeAMQPChannel) shutdown(reason *amqp.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, n := range c.notify {
		if reason != nil {
			n <- reason
		}
		close(n)
	}
}

func (c *fakeAMQPChannel) publishedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.keys...)
}

type fakeAMQPConn struct {
	mu       sync.Mutex
	closed   bool
	channels []*fakeAMQPChannel
}

func (c *fakeAMQPConn) OpenChannel() (amqpChannel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, amqp.ErrClosed
	}
	ch := &fakeAMQPChannel{}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeAMQPConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeAMQPConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeAMQPConn) channel(i int) *fakeAMQPChannel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels[i]
}

func (c *fakeAMQPConn) channelCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.channels)
}

type fakeBroker struct {
	conns []*fakeAMQPConn
	err   error
}

func (b *fakeBroker) dial(string) (amqpConn, error) {
	if b.err != nil {
		return nil, b.err
	}
	conn := &fakeAMQPConn{}
	b.conns = append(b.conns, conn)
	return conn, nil
}

func TestAMQPPublisherRoutesByEventType(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "homefix.bookings", logger.Discard(), broker.dial)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Deliver(context.Background(), sampleEvent(models.EventBookingCompleted)))

	require.Len(t, broker.conns, 1)
	ch := broker.conns[0].channel(0)
	assert.Equal(t, []string{"homefix.bookings"}, ch.declared)
	assert.Equal(t, []string{"booking.completed"}, ch.publishedKeys())
	assert.Equal(t, "booking.completed:b-1", ch.published[0].MessageId)
	assert.Equal(t, "application/json", ch.published[0].ContentType)
}

func TestAMQPPublisherReopensClosedChannel(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "homefix.bookings", logger.Discard(), broker.dial)
	require.NoError(t, err)
	defer p.Close()
	ctx := context.Background()

	require.NoError(t, p.Deliver(ctx, sampleEvent(models.EventBookingConfirmed)))
	conn := broker.conns[0]
	conn.channel(0).shutdown(&amqp.Error{Code: amqp.PreconditionFailed, Reason: "PRECONDITION_FAILED"})

	require.NoError(t, p.Deliver(ctx, sampleEvent(models.EventBookingStarted)))
	require.Equal(t, 2, conn.channelCount())
	assert.Equal(t, []string{"booking.confirmed"}, conn.channel(0).publishedKeys())
	assert.Equal(t, []string{"booking.started"}, conn.channel(1).publishedKeys())
	assert.Len(t, broker.conns, 1, "an open connection is reused")
}

func TestAMQPPublisherRedialsClosedConnection(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "homefix.bookings", logger.Discard(), broker.dial)
	require.NoError(t, err)
	defer p.Close()
	ctx := context.Background()

	first := broker.conns[0]
	first.channel(0).shutdown(&amqp.Error{Code: amqp.ConnectionForced, Reason: "CONNECTION_FORCED"})
	require.NoError(t, first.Close())

	require.NoError(t, p.Deliver(ctx, sampleEvent(models.EventBookingCancelled)))
	require.Len(t, broker.conns, 2)
	assert.Equal(t, []string{"booking.cancelled"}, broker.conns[1].channel(0).publishedKeys())

	broker.conns[1].channel(0).shutdown(&amqp.Error{Code: amqp.ConnectionForced, Reason: "CONNECTION_FORCED"})
	require.NoError(t, broker.conns[1].Close())
	broker.err = errors.New("connection refused")
	err = p.Deliver(ctx, sampleEvent(models.EventBookingCancelled))
	assert.ErrorContains(t, err, "dial rabbitmq")

	broker.err = nil
	assert.NoError(t, p.Deliver(ctx, sampleEvent(models.EventBookingCancelled)))
}

func TestAMQPPublisherDialFailure(t *testing.T) {
	broker := &fakeBroker{err: errors.New("connection refused")}
	_, err := newAMQPPublisher("amqp://broker", "homefix.bookings", logger.Discard(), broker.dial)
	assert.ErrorContains(t, err, "dial rabbitmq")
}

func TestAMQPPublisherClose(t *testing.T) {
	broker := &fakeBroker{}
	p, err := newAMQPPublisher("amqp://broker", "homefix.bookings", logger.Discard(), broker.dial)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, broker.conns[0].IsClosed())
	assert.True(t, broker.conns[0].channel(0).IsClosed())

	err = p.Deliver(context.Background(), sampleEvent(models.EventBookingCreated))
	assert.ErrorIs(t, err, errPublisherClosed)
	assert.Len(t, broker.conns, 1)
}
