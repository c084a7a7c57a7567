package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kjayaram/gridpath/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream. Sampling
// progress goes over core NATS (fire-and-forget, stale fractions are
// worthless), completed profiles go through JetStream so late subscribers
// can still pick them up.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// ProgressEvent is the payload published while a route is being sampled.
type ProgressEvent struct {
	SessionID string    `json:"session_id"`
	Fraction  float64   `json:"fraction"`
	Time      time.Time `json:"time"`
}

// ProfileEvent is the payload published when sampling completes.
type ProfileEvent struct {
	SessionID string                 `json:"session_id"`
	Profile   *domain.TerrainProfile `json:"profile"`
	Time      time.Time              `json:"time"`
}

// NewPublisher connects to NATS and ensures the profile stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "TERRAIN_PROFILES",
		Subjects:  []string{"terrain.profile.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishProgress sends the current completed fraction for a session.
func (p *Publisher) PublishProgress(ctx context.Context, sessionID string, fraction float64) error {
	data, err := json.Marshal(ProgressEvent{SessionID: sessionID, Fraction: fraction, Time: time.Now()})
	if err != nil {
		return err
	}
	return p.conn.Publish("terrain.progress."+sessionID, data)
}

// PublishProfile sends a completed terrain profile.
func (p *Publisher) PublishProfile(ctx context.Context, sessionID string, profile *domain.TerrainProfile) error {
	data, err := json.Marshal(ProfileEvent{SessionID: sessionID, Profile: profile, Time: time.Now()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("terrain.profile."+sessionID, data)
	return err
}

// PublishBroadcast sends an opaque payload to all connected clients.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("terrain.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
