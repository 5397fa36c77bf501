package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/platform/httpx"
	"gemini-observatory/backend/internal/platform/rbac"
	progservice "gemini-observatory/backend/internal/program/service"
	"gemini-observatory/backend/internal/progress"
)

const heartbeatInterval = 15 * time.Second

// Subscriber is the subscription side of the progress hub.
type Subscriber interface {
	Subscribe(programID string) (<-chan progress.Event, func())
}

// Snapshotter reports a program's current progress if the caller may see it.
type Snapshotter interface {
	Snapshot(ctx context.Context, caller rbac.Principal, programID string) (progress.Snapshot, error)
}

// Handler serves progress snapshots and server-sent event streams.
type Handler struct {
	hub       Subscriber
	tracker   Snapshotter
	heartbeat time.Duration
}

func NewHandler(hub Subscriber, tracker Snapshotter) *Handler {
	return &Handler{hub: hub, tracker: tracker, heartbeat: heartbeatInterval}
}

// Snapshot returns the program's status and percent complete.
func (h *Handler) Snapshot(c *gin.Context) {
	snap, err := h.tracker.Snapshot(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// StreamProgram sends a snapshot, then every event for one program, as server-sent events.
// The stream ends when the program reaches a terminal status.
func (h *Handler) StreamProgram(c *gin.Context) {
	id := c.Param("id")
	events, cancel := h.hub.Subscribe(id)
	defer cancel()
	snap, err := h.tracker.Snapshot(c.Request.Context(), httpx.Principal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	startStream(c)
	c.SSEvent("snapshot", snap)
	c.Writer.Flush()
	if snap.Status.Terminal() {
		return
	}
	h.stream(c, events, nil, true)
}

// StreamAll sends progress events for every program the caller may see as server-sent events.
func (h *Handler) StreamAll(c *gin.Context) {
	caller := httpx.Principal(c)
	events, cancel := h.hub.Subscribe("")
	defer cancel()
	startStream(c)
	c.Writer.Flush()
	h.stream(c, events, func(e progress.Event) bool { return e.VisibleTo(caller) }, false)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, progress.ErrProgramNotFound), errors.Is(err, progservice.ErrProgramNotFound):
		httpx.Error(c, http.StatusNotFound, "observing program not found")
	default:
		httpx.Fail(c, err, "failed to load progress")
	}
}

func startStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}

func (h *Handler) stream(c *gin.Context, events <-chan progress.Event, keep func(progress.Event) bool, stopOnFinal bool) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if keep != nil && !keep(e) {
				continue
			}
			c.SSEvent("progress", e)
			c.Writer.Flush()
			if stopOnFinal && isFinal(e.Type) {
				return
			}
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}

func isFinal(t progress.EventType) bool {
	switch t {
	case progress.EventCompleted, progress.EventAborted, progress.EventRejected:
		return true
	}
	return false
}
