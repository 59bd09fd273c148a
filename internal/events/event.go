// Package events publishes assessment change notifications.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

// Event types.
const (
	AssessmentRecorded = "assessment.recorded"
	AssessmentUpdated  = "assessment.updated"
	AssessmentDeleted  = "assessment.deleted"
)

type Event struct {
	ID           string                   `json:"id"`
	Type         string                   `json:"type"`
	OccurredAt   time.Time                `json:"occurred_at"`
	AssessmentID int64                    `json:"assessment_id"`
	ClientID     int64                    `json:"client_id"`
	TakenAt      time.Time                `json:"taken_at"`
	Result       *domain.AssessmentResult `json:"result,omitempty"`
}

// NewAssessmentEvent snapshots an assessment into an event with a fresh id.
func NewAssessmentEvent(eventType string, a *domain.Assessment) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		OccurredAt:   time.Now().UTC(),
		AssessmentID: a.ID,
		ClientID:     a.ClientID,
		TakenAt:      a.TakenAt,
		Result:       a.Result,
	}
}

// Publisher delivers events. Publish must not block on the broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
