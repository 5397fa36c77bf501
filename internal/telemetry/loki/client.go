// Package loki pushes telemetry lines to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // [timestamp_ns, line]
}

var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:/]`)

// eventFields are the parts of a telemetry event used for labels and the timestamp.
type eventFields struct {
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Method    string    `json:"method"`
	Role      string    `json:"role"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Client pushes to one Loki instance.
type Client struct {
	baseURL string
	job     string
	http    *http.Client
}

// NewClient returns a client for baseURL (e.g. http://localhost:3100). Every stream gets job=<job>.
func NewClient(baseURL, job string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("loki: base URL is empty")
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		job:     job,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// PushEventJSON labels a telemetry event JSON (a Kafka message value) and pushes it.
// Unparseable input is pushed as-is with the current time.
func (c *Client) PushEventJSON(ctx context.Context, raw []byte) error {
	labels := map[string]string{}
	ts := time.Now().UTC()
	var f eventFields
	if err := json.Unmarshal(raw, &f); err == nil {
		labels["event_type"] = f.EventType
		labels["source"] = f.Source
		labels["method"] = f.Method
		labels["role"] = f.Role
		if f.Status > 0 {
			labels["status_class"] = strconv.Itoa(f.Status/100) + "xx"
		}
		if !f.CreatedAt.IsZero() {
			ts = f.CreatedAt
		}
	}
	return c.Push(ctx, ts, string(raw), labels)
}

// Push sends a single line. Empty label values are dropped.
func (c *Client) Push(ctx context.Context, ts time.Time, line string, labels map[string]string) error {
	streamLabels := map[string]string{"job": c.job}
	for k, v := range labels {
		if s := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_"); s != "" {
			streamLabels[k] = s
		}
	}
	payload, err := json.Marshal(PushRequest{Streams: []Stream{{
		Stream: streamLabels,
		Values: [][]string{{strconv.FormatInt(ts.UnixNano(), 10), line}},
	}}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/loki/api/v1/push", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
