package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadTransitionEvent is published once per applied status change.
type LeadTransitionEvent struct {
	EventID    string    `json:"event_id"`
	Collection string    `json:"collection"`
	LeadID     string    `json:"lead_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Actor      string    `json:"actor"`
	At         time.Time `json:"at"`
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

// BuildMessage encodes an event the way it goes on the wire.
func BuildMessage(ev LeadTransitionEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode transition event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    ev.EventID,
		Timestamp:    ev.At,
		Type:         "lead." + ev.To,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}, nil
}

func (p *RabbitMQProducer) PublishTransition(ctx context.Context, ev LeadTransitionEvent) error {
	msg, err := BuildMessage(ev)
	if err != nil {
		return err
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}
	return nil
}
