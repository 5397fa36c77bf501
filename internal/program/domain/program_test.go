package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions(t *testing.T) {
	allowed := []struct {
		from Status
		t    Transition
		to   Status
	}{
		{StatusPendingReview, TransitionApprove, StatusApproved},
		{StatusPendingReview, TransitionReject, StatusRejected},
		{StatusApproved, TransitionStart, StatusExecuting},
		{StatusExecuting, TransitionFinish, StatusComplete},
		{StatusExecuting, TransitionAbort, StatusAborted},
	}
	for _, tc := range allowed {
		got, err := tc.from.Next(tc.t)
		require.NoError(t, err, "%s --%s-->", tc.from, tc.t)
		assert.Equal(t, tc.to, got)
	}

	denied := []struct {
		from Status
		t    Transition
	}{
		{StatusPendingReview, TransitionStart},
		{StatusRejected, TransitionStart},
		{StatusApproved, TransitionApprove},
		{StatusApproved, TransitionAbort},
		{StatusComplete, TransitionFinish},
		{StatusAborted, TransitionStart},
		{StatusExecuting, TransitionReject},
	}
	for _, tc := range denied {
		_, err := tc.from.Next(tc.t)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s --%s-->", tc.from, tc.t)
	}
}

func TestApplyStampsTimes(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p := &ObservingProgram{Status: StatusPendingReview}

	require.NoError(t, p.Apply(TransitionApprove, at))
	require.NotNil(t, p.ReviewedAt)
	require.NoError(t, p.Apply(TransitionStart, at.Add(time.Hour)))
	require.NotNil(t, p.StartedAt)
	assert.Equal(t, at.Add(time.Hour), *p.StartedAt)
	require.NoError(t, p.Apply(TransitionFinish, at.Add(2*time.Hour)))
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, StatusComplete, p.Status)
	assert.True(t, p.Status.Terminal())

	assert.ErrorIs(t, p.Apply(TransitionAbort, at), ErrInvalidTransition)
	assert.Equal(t, StatusComplete, p.Status)
}

func TestPercentAndRemaining(t *testing.T) {
	p := &ObservingProgram{FramesPlanned: 4, FramesCaptured: 1}
	assert.InDelta(t, 25.0, p.Percent(), 1e-9)
	assert.Equal(t, 3, p.Remaining())

	p.FramesCaptured = 6
	assert.InDelta(t, 100.0, p.Percent(), 1e-9)
	assert.Zero(t, p.Remaining())

	assert.Zero(t, (&ObservingProgram{}).Percent())
}

func TestExecutionMode(t *testing.T) {
	assert.True(t, ModeAutomated.Background())
	assert.True(t, ModeQueue.Background())
	assert.False(t, ModeInteractive.Background())
	assert.False(t, ExecutionMode("manual").Valid())
}

func TestInputProblems(t *testing.T) {
	deg := func(v float64) *float64 { return &v }
	good := Input{
		CalibrationUnit:       "ThAr",
		LightType:             "MaunaKeaSkyEmission",
		FoldMirrorType:        "CASSEGRAIN_FOCUS",
		TelepositionDegree:    deg(180),
		TelepositionDirection: " North ",
	}
	assert.Empty(t, good.Problems())
	assert.Equal(t, "North", good.TelepositionDirection)

	var empty Input
	assert.Equal(t, []string{
		"Missing required field: calibration_unit",
		"Missing required field: light_type",
		"Missing required field: fold_mirror_type",
		"Missing required field: teleposition_degree",
		"Missing required field: teleposition_direction",
	}, empty.Problems())

	bad := Input{
		CalibrationUnit:       "Neon",
		LightType:             "Moonlight",
		FoldMirrorType:        "FLAT",
		TelepositionDegree:    deg(361),
		TelepositionDirection: "Up",
	}
	assert.Equal(t, []string{
		"Invalid calibration unit.",
		"Invalid light type.",
		"Invalid fold mirror type.",
		"Teleposition degree must be between 0 and 360.",
		"Invalid teleposition direction.",
	}, bad.Problems())
}
