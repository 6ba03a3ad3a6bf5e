package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const SubjectTenantProvisioned = "backoffice.tenant.provisioned"

// TenantProvisioned is published after a tenant and its admin are committed.
type TenantProvisioned struct {
	TenantID   int64     `json:"tenant_id"`
	Handle     string    `json:"handle"`
	Name       string    `json:"name"`
	AdminEmail string    `json:"admin_email"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("backoffice"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

// Close flushes pending publishes before closing the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct {
	log *zap.SugaredLogger
}

func NewLogPublisher(log *zap.SugaredLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, subject string, payload any) error {
	p.log.Infow("event", "subject", subject, "payload", payload)
	return nil
}
