package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func sampleEvent() LeadTransitionEvent {
	return LeadTransitionEvent{
		EventID:    "evt-1",
		Collection: "nri-1504",
		LeadID:     "lead-9",
		From:       "new",
		To:         "pushed",
		Actor:      "admin",
		At:         time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildMessage(t *testing.T) {
	msg, err := BuildMessage(sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "evt-1", msg.MessageId)
	assert.Equal(t, "lead.pushed", msg.Type)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var decoded LeadTransitionEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, sampleEvent(), decoded)
}

func TestPublishTransitionUsesLeadExchange(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		return msg.MessageId == "evt-1"
	})).Return(nil)

	err := NewProducer(pub).PublishTransition(context.Background(), sampleEvent())

	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestPublishTransitionWrapsError(t *testing.T) {
	pub := new(MockPublisher)
	boom := errors.New("channel closed")
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(boom)

	err := NewProducer(pub).PublishTransition(context.Background(), sampleEvent())

	assert.ErrorIs(t, err, boom)
}
