package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/nats-io/nats.go"
)

const connectTimeout = 5 * time.Second

// NATSMirror publishes every handled event as JSON on <prefix>.<kind>.
type NATSMirror struct {
	conn   *nats.Conn
	prefix string
}

type mirroredEvent struct {
	bus.Event
	Error string `json:"error,omitempty"`
}

func ConnectNATS(url, prefix string) (*NATSMirror, error) {
	conn, err := nats.Connect(url,
		nats.Name("tsuyaku"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = "tsuyaku"
	}
	slog.Info("connected to NATS", "url", url, "subject_prefix", prefix)
	return &NATSMirror{conn: conn, prefix: prefix}, nil
}

func (m *NATSMirror) Subject(kind bus.Kind) string {
	return m.prefix + "." + string(kind)
}

func (m *NATSMirror) Mirror(ctx context.Context, e bus.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := mirroredEvent{Event: e}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return m.conn.Publish(m.Subject(e.Kind), payload)
}

func (m *NATSMirror) Close() error {
	if m == nil || m.conn == nil {
		return nil
	}
	slog.Info("closing NATS connection")
	err := m.conn.Drain()
	m.conn.Close()
	return err
}

type noopMirror struct{}

func (noopMirror) Mirror(context.Context, bus.Event) error { return nil }

func (noopMirror) Close() error { return nil }
