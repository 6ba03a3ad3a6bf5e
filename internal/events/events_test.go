package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	pub := NewLogPublisher(zap.New(core).Sugar())

	err := pub.Publish(context.Background(), SubjectTenantProvisioned, TenantProvisioned{TenantID: 1001, Handle: "acme"})
	require.NoError(t, err)

	entries := logs.FilterField(zap.String("subject", SubjectTenantProvisioned)).All()
	require.Len(t, entries, 1)
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1")
	require.Error(t, err)
}
