package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SnapshotEventPublisher announces snapshot lifecycle changes so downstream
// consumers (dashboards, notifiers) can refresh. Publication is best effort:
// a failed or absent broker never blocks an import.
type SnapshotEventPublisher interface {
	SnapshotImported(id uint, name string, rows int)
	SnapshotDeleted(id uint)
}

type snapshotEvent struct {
	Action     string    `json:"action"`
	SnapshotID uint      `json:"snapshotId"`
	Name       string    `json:"name,omitempty"`
	Rows       int       `json:"rows,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

type natsSnapshotEvents struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewSnapshotEvents constructs a NATS-backed publisher. A nil connection
// yields a publisher that silently drops events.
func NewSnapshotEvents(conn *nats.Conn, subject string, logger zerolog.Logger) SnapshotEventPublisher {
	if subject == "" {
		subject = "pantau.snapshots"
	}
	return &natsSnapshotEvents{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "snapshot_events").Logger(),
	}
}

func (p *natsSnapshotEvents) SnapshotImported(id uint, name string, rows int) {
	p.publish(snapshotEvent{Action: "imported", SnapshotID: id, Name: name, Rows: rows, SentAt: time.Now().UTC()})
}

func (p *natsSnapshotEvents) SnapshotDeleted(id uint) {
	p.publish(snapshotEvent{Action: "deleted", SnapshotID: id, SentAt: time.Now().UTC()})
}

func (p *natsSnapshotEvents) publish(event snapshotEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("action", event.Action).Msg("failed to publish snapshot event")
	}
}
