package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange = exchange
	c.key = key
	c.msg = msg
	return c.err
}

func TestNewOrderEvent(t *testing.T) {
	order := &models.Order{
		OrderID:         12,
		Status:          models.StatusAccepted,
		FixedTotalPrice: decimal.RequireFromString("548.00"),
	}

	event := NewOrderEvent(OrderCreated, order)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, OrderCreated, event.Type)
	assert.Equal(t, 12, event.OrderID)
	assert.Equal(t, models.StatusAccepted, event.Status)
	assert.True(t, event.Total.Equal(decimal.NewFromInt(548)))
	assert.False(t, event.OccurredAt.IsZero())
}

func TestAMQPPublisher_PublishOrderEvent(t *testing.T) {
	ch := &recordingChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "orders_topic", log: logger.Nop()}

	event := NewOrderEvent(OrderStatusChanged, &models.Order{OrderID: 3, Status: models.StatusInProcess})
	require.NoError(t, p.PublishOrderEvent(context.Background(), event))

	assert.Equal(t, "orders_topic", ch.exchange)
	assert.Equal(t, OrderStatusChanged, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, event.EventID, ch.msg.MessageId)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "in_process", decoded["status"])
	assert.Equal(t, float64(3), decoded["order_id"])
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &recordingChannel{err: errors.New("channel closed")}
	p := &AMQPPublisher{channel: ch, exchange: "orders_topic", log: logger.Nop()}

	err := p.PublishOrderEvent(context.Background(), NewOrderEvent(OrderCreated, &models.Order{OrderID: 1}))
	assert.ErrorContains(t, err, "channel closed")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishOrderEvent(context.Background(), OrderEvent{}))
	assert.NoError(t, p.Close())
}
