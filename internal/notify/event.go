// Package notify turns domain events into persisted notifications.
//
// Services publish an Event after their state change commits. A Publisher
// either renders and stores the notifications inline (Direct) or hands the
// event to the persistent job queue (Outbox) so delivery is retried
// independently of the request that caused it.
package notify

import (
	"context"

	"github.com/garnizeh/jobboard/pkg/models"
)

type EventType string

const (
	EventSubjectSubmitted         EventType = "subject.submitted"
	EventSubjectApproved          EventType = "subject.approved"
	EventSubjectRejected          EventType = "subject.rejected"
	EventReviewCreated            EventType = "review.created"
	EventApplicationCreated       EventType = "application.created"
	EventApplicationStatusChanged EventType = "application.status_changed"
)

// Event describes something that happened. Which fields matter depends on
// Type; see Renderer.Render.
type Event struct {
	Type          EventType          `json:"type"`
	ActorID       int64              `json:"actor_id"`
	Kind          models.SubjectKind `json:"kind,omitempty"`
	SubjectID     int64              `json:"subject_id,omitempty"`
	OwnerID       int64              `json:"owner_id,omitempty"`
	Title         string             `json:"title,omitempty"`
	Reason        string             `json:"reason,omitempty"`
	JobID         int64              `json:"job_id,omitempty"`
	ApplicationID int64              `json:"application_id,omitempty"`
	Extra         map[string]string  `json:"extra,omitempty"`
}

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
