package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/noah-isme/leetnote-go-api/internal/dto"
)

// EvaluationPublisher announces stored evaluations to other systems.
type EvaluationPublisher interface {
	PublishEvaluationCreated(ctx context.Context, event dto.EvaluationCreatedEvent) error
}

type natsEvaluationPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSEvaluationPublisher publishes events on subject. It returns nil when conn is nil.
func NewNATSEvaluationPublisher(conn *nats.Conn, subject string) EvaluationPublisher {
	if conn == nil || subject == "" {
		return nil
	}
	return &natsEvaluationPublisher{conn: conn, subject: subject}
}

func (p *natsEvaluationPublisher) PublishEvaluationCreated(_ context.Context, event dto.EvaluationCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode evaluation event: %w", err)
	}

	msg := nats.NewMsg(p.subject + ".created")
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = payload

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish evaluation event: %w", err)
	}
	return nil
}
