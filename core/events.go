package core

import (
	"context"
	"time"
)

// Event types
const (
	EventEvaluationSubmitted = "evaluation.submitted"
	EventEvaluationGraded    = "evaluation.graded"
)

// Event describes a state change of an evaluation.
type Event struct {
	Type         string    `json:"type"`
	EvaluationID string    `json:"evaluationId"`
	UserID       string    `json:"userId"`
	Semester     string    `json:"semester"`
	AcademicYear string    `json:"academicYear"`
	FinalScore   *int      `json:"finalScore,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

type (
	// EventPublisher hands events over to whoever reacts to them (in-process or through a broker).
	EventPublisher interface {
		Publish(ctx context.Context, events ...Event) error
	}

	// EventHandler reacts to a single event.
	EventHandler interface {
		HandleEvent(ctx context.Context, event Event) error
	}
)

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Event) error { return nil }
