// Package domain defines observing programs and their review and execution lifecycle.
package domain

import (
	"errors"
	"time"
)

// Status is the lifecycle state of an observing program.
type Status string

const (
	StatusPendingReview Status = "Pending Review"
	StatusApproved      Status = "Approved"
	StatusRejected      Status = "Rejected"
	StatusExecuting     Status = "Executing"
	StatusComplete      Status = "Complete"
	StatusAborted       Status = "Aborted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingReview, StatusApproved, StatusRejected, StatusExecuting, StatusComplete, StatusAborted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusComplete || s == StatusAborted
}

// Transition is an action that moves a program between statuses.
type Transition string

const (
	TransitionApprove Transition = "approve"
	TransitionReject  Transition = "reject"
	TransitionStart   Transition = "start"
	TransitionFinish  Transition = "finish"
	TransitionAbort   Transition = "abort"
)

var ErrInvalidTransition = errors.New("invalid program status transition")

var transitions = map[Status]map[Transition]Status{
	StatusPendingReview: {TransitionApprove: StatusApproved, TransitionReject: StatusRejected},
	StatusApproved:      {TransitionStart: StatusExecuting},
	StatusExecuting:     {TransitionFinish: StatusComplete, TransitionAbort: StatusAborted},
}

// Next returns the status reached by applying t, or ErrInvalidTransition.
func (s Status) Next(t Transition) (Status, error) {
	if next, ok := transitions[s][t]; ok {
		return next, nil
	}
	return "", ErrInvalidTransition
}

// ExecutionMode selects how an approved program is run.
type ExecutionMode string

const (
	ModeAutomated   ExecutionMode = "automated"
	ModeInteractive ExecutionMode = "interactive"
	ModeQueue       ExecutionMode = "queue"
)

func (m ExecutionMode) Valid() bool {
	return m == ModeAutomated || m == ModeInteractive || m == ModeQueue
}

// Background reports whether frames are captured by the execution workers rather than the operator.
func (m ExecutionMode) Background() bool {
	return m == ModeAutomated || m == ModeQueue
}

// ObservingProgram is a validated science plan submitted for review and execution.
type ObservingProgram struct {
	ID                    string        `db:"id" json:"id"`
	PlanID                string        `db:"plan_id" json:"plan_id"`
	SubmittedBy           string        `db:"submitted_by" json:"submitted_by"`
	CalibrationUnit       string        `db:"calibration_unit" json:"calibration_unit"`
	LightType             string        `db:"light_type" json:"light_type"`
	FoldMirrorType        string        `db:"fold_mirror_type" json:"fold_mirror_type"`
	TelepositionDegree    float64       `db:"teleposition_degree" json:"teleposition_degree"`
	TelepositionDirection string        `db:"teleposition_direction" json:"teleposition_direction"`
	Status                Status        `db:"status" json:"status"`
	ReviewedBy            string        `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNote            string        `db:"review_note" json:"review_note,omitempty"`
	OperatorID            string        `db:"operator_id" json:"operator_id,omitempty"`
	ExecutionMode         ExecutionMode `db:"execution_mode" json:"execution_mode,omitempty"`
	FramesPlanned         int           `db:"frames_planned" json:"frames_planned"`
	FramesCaptured        int           `db:"frames_captured" json:"frames_captured"`
	SubmittedAt           time.Time     `db:"submitted_at" json:"submitted_at"`
	ReviewedAt            *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	StartedAt             *time.Time    `db:"started_at" json:"started_at,omitempty"`
	CompletedAt           *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updated_at"`
}

// Apply moves the program through t and stamps the matching timestamp.
func (p *ObservingProgram) Apply(t Transition, at time.Time) error {
	next, err := p.Status.Next(t)
	if err != nil {
		return err
	}
	p.Status = next
	p.UpdatedAt = at
	switch t {
	case TransitionApprove, TransitionReject:
		p.ReviewedAt = &at
	case TransitionStart:
		p.StartedAt = &at
	case TransitionFinish, TransitionAbort:
		p.CompletedAt = &at
	}
	return nil
}

// Percent is the share of planned frames already captured, 0..100.
func (p *ObservingProgram) Percent() float64 {
	if p.FramesPlanned <= 0 {
		return 0
	}
	pct := float64(p.FramesCaptured) * 100 / float64(p.FramesPlanned)
	if pct > 100 {
		return 100
	}
	return pct
}

// Remaining is the number of frames still to capture.
func (p *ObservingProgram) Remaining() int {
	if n := p.FramesPlanned - p.FramesCaptured; n > 0 {
		return n
	}
	return 0
}
