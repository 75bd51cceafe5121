package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// AnswerEvent is published after an answer is stored.
type AnswerEvent struct {
	AnswerID     string    `json:"answer_id"`
	SubmissionID string    `json:"submission_id"`
	SubjectID    string    `json:"subject_id"`
	QuestionID   string    `json:"question_id"`
	Status       string    `json:"status"`
	Score        *int      `json:"score"`
	Model        string    `json:"ai_model"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// AnswerEventPublisher delivers answer events to downstream consumers.
type AnswerEventPublisher interface {
	PublishAnswer(ctx context.Context, event AnswerEvent) error
}

// NATSAnswerPublisher publishes answer events on a NATS subject. A nil connection drops events.
type NATSAnswerPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSAnswerPublisher builds a publisher for subject.
func NewNATSAnswerPublisher(conn *nats.Conn, subject string) *NATSAnswerPublisher {
	return &NATSAnswerPublisher{conn: conn, subject: subject}
}

// PublishAnswer encodes event as JSON and publishes it.
func (p *NATSAnswerPublisher) PublishAnswer(_ context.Context, event AnswerEvent) error {
	if p == nil || p.conn == nil || p.subject == "" {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, payload)
}
