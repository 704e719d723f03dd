// Package pubsub carries fire-and-forget marketplace events. Downstream
// consumers (the notification sender) subscribe to the events topic; a
// publish failure is never allowed to fail the originating operation.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eschool/internal/config"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Event names carried on the marketplace events topic.
const (
	EventCoursePublished     = "course.published"
	EventEnrollmentCompleted = "enrollment.completed"
)

// Event is the envelope published for every marketplace event.
type Event struct {
	Name       string    `json:"name"`
	CourseID   string    `json:"course_id"`
	CourseSlug string    `json:"course_slug,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
	PublishEvent(ctx context.Context, topic string, event Event) (string, error)
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher using the GCP project from config.
func NewPublisher(ctx context.Context, cfg *config.Config) (*PubSubPublisher, error) {
	var opts []option.ClientOption
	if cfg.GCPCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubPublisher{client: client}, nil
}

// Publish sends the payload to the given Pub/Sub topic and returns the message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	t := p.client.Topic(topic)
	result := t.Publish(ctx, &pubsub.Message{Data: payload})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return id, nil
}

// PublishEvent stamps and serializes the event before publishing it.
func (p *PubSubPublisher) PublishEvent(ctx context.Context, topic string, event Event) (string, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event %s: %w", event.Name, err)
	}
	return p.Publish(ctx, topic, payload)
}
