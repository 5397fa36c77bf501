// Package progress broadcasts observing program progress (UC-05) to in-process subscribers
// and, optionally, to NATS.
package progress

import (
	"time"

	"gemini-observatory/backend/internal/program/domain"
)

// EventType names what happened to a program.
type EventType string

const (
	EventSubmitted     EventType = "submitted"
	EventApproved      EventType = "approved"
	EventRejected      EventType = "rejected"
	EventQueued        EventType = "queued"
	EventStarted       EventType = "started"
	EventFrameCaptured EventType = "frame_captured"
	EventCompleted     EventType = "completed"
	EventAborted       EventType = "aborted"
)

// Event is one progress notification.
type Event struct {
	ProgramID      string    `json:"program_id"`
	PlanID         string    `json:"plan_id"`
	SubmittedBy    string    `json:"submitted_by,omitempty"`
	Type           EventType `json:"type"`
	Status         string    `json:"status"`
	FramesCaptured int       `json:"frames_captured"`
	FramesPlanned  int       `json:"frames_planned"`
	QueuePosition  int       `json:"queue_position,omitempty"`
	Message        string    `json:"message,omitempty"`
	At             time.Time `json:"at"`
}

// NewEvent builds an event from the program's current state.
func NewEvent(p *domain.ObservingProgram, t EventType, msg string) Event {
	return Event{
		ProgramID:      p.ID,
		PlanID:         p.PlanID,
		SubmittedBy:    p.SubmittedBy,
		Type:           t,
		Status:         string(p.Status),
		FramesCaptured: p.FramesCaptured,
		FramesPlanned:  p.FramesPlanned,
		Message:        msg,
		At:             time.Now().UTC(),
	}
}

// Snapshot is the current progress of a program, computed from its stored row.
type Snapshot struct {
	ProgramID      string               `json:"program_id"`
	PlanID         string               `json:"plan_id"`
	Status         domain.Status        `json:"status"`
	ExecutionMode  domain.ExecutionMode `json:"execution_mode,omitempty"`
	FramesCaptured int                  `json:"frames_captured"`
	FramesPlanned  int                  `json:"frames_planned"`
	Percent        float64              `json:"percent"`
	StartedAt      *time.Time           `json:"started_at,omitempty"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
}

func SnapshotOf(p *domain.ObservingProgram) Snapshot {
	return Snapshot{
		ProgramID:      p.ID,
		PlanID:         p.PlanID,
		Status:         p.Status,
		ExecutionMode:  p.ExecutionMode,
		FramesCaptured: p.FramesCaptured,
		FramesPlanned:  p.FramesPlanned,
		Percent:        p.Percent(),
		StartedAt:      p.StartedAt,
		CompletedAt:    p.CompletedAt,
	}
}
