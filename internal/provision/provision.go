package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/events"
	"github.com/tajious/backoffice/internal/metrics"
	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/storage"
	"github.com/tajious/backoffice/internal/validation"
	"go.uber.org/zap"
)

var (
	ErrDuplicateTenant = errors.New("tenant already exists")
	ErrInvalidRequest  = errors.New("invalid provisioning request")
	ErrServer          = errors.New("provisioning failed")
)

type Request struct {
	ClientName    string
	Handle        string
	AdminEmail    string
	AdminName     string
	AdminPassword string
	Credentials   map[string]any
}

// Orchestrator creates a tenant together with its first administrator.
type Orchestrator struct {
	store     storage.Storage
	publisher events.Publisher
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
}

func NewOrchestrator(store storage.Storage, publisher events.Publisher, log *zap.SugaredLogger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		store:     store,
		publisher: publisher,
		log:       log,
		metrics:   m,
	}
}

// Provision runs all steps or none of them. The pre-check only avoids
// burning a sequence value on an obvious duplicate; the unique indexes
// enforced inside the transaction are what close the race.
func (o *Orchestrator) Provision(ctx context.Context, req Request) (*models.Tenant, error) {
	tenant, err := o.provision(ctx, req)
	o.metrics.Provisioned.WithLabelValues(outcome(err)).Inc()
	return tenant, err
}

func (o *Orchestrator) provision(ctx context.Context, req Request) (*models.Tenant, error) {
	name := strings.TrimSpace(req.ClientName)
	handle := strings.ToLower(strings.TrimSpace(req.Handle))
	email := auth.NormalizeEmail(req.AdminEmail)
	if name == "" || email == "" || req.AdminPassword == "" {
		return nil, ErrInvalidRequest
	}
	if !validation.IsHandle(handle) {
		return nil, fmt.Errorf("%w: handle %q", ErrInvalidRequest, handle)
	}
	if len(req.AdminPassword) > validation.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, auth.ErrPasswordTooLong)
	}

	exists, err := o.store.TenantExists(ctx, name, handle)
	if err != nil {
		return nil, o.fail("check duplicate", err)
	}
	if exists {
		return nil, ErrDuplicateTenant
	}

	id, err := o.store.NextSequence(ctx, storage.TenantSequence)
	if err != nil {
		return nil, o.fail("allocate tenant id", err)
	}

	hash, err := auth.HashPassword(req.AdminPassword)
	if err != nil {
		return nil, o.fail("hash admin password", err)
	}

	tenant := &models.Tenant{
		ID:     id,
		Handle: handle,
		Name:   name,
		Active: true,
		Config: models.TenantConfig{
			TenantID:      id,
			SigningSecret: auth.NewSigningSecret(),
			Credentials:   req.Credentials,
		},
	}
	admin := &models.StaffUser{
		ID:       uuid.NewString(),
		TenantID: id,
		Email:    email,
		Name:     strings.TrimSpace(req.AdminName),
		Password: hash,
		Role:     models.RoleAdmin,
		Active:   true,
	}

	err = o.store.Transaction(ctx, func(ctx context.Context, tx storage.Storage) error {
		if err := tx.CreateTenant(ctx, tenant); err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		if err := tx.CreateStaffUser(ctx, admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		return nil
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, ErrDuplicateTenant
	}
	if err != nil {
		return nil, o.fail("commit", err)
	}

	o.log.Infow("tenant provisioned", "tenant_id", tenant.ID, "handle", tenant.Handle)

	evt := events.TenantProvisioned{
		TenantID:   tenant.ID,
		Handle:     tenant.Handle,
		Name:       tenant.Name,
		AdminEmail: admin.Email,
		At:         time.Now().UTC(),
	}
	if err := o.publisher.Publish(ctx, events.SubjectTenantProvisioned, evt); err != nil {
		o.log.Warnw("failed to publish provisioning event", "tenant_id", tenant.ID, "error", err)
	}

	return tenant, nil
}

func (o *Orchestrator) fail(step string, err error) error {
	o.log.Errorw("provisioning failed", "step", step, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrServer, step, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDuplicateTenant):
		return "duplicate"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	default:
		return "error"
	}
}
