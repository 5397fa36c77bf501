package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// NATSSink publishes each event as JSON to <prefix>.<programID>.
type NATSSink struct {
	conn   *nats.Conn
	prefix string
}

// ConnectNATS dials the server with reconnects enabled.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

func NewNATSSink(conn *nats.Conn, prefix string) *NATSSink {
	return &NATSSink{conn: conn, prefix: prefix}
}

// Subject returns the subject events for programID are published on.
func (s *NATSSink) Subject(programID string) string {
	return s.prefix + "." + programID
}

func (s *NATSSink) Send(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}
	return s.conn.Publish(s.Subject(e.ProgramID), data)
}
