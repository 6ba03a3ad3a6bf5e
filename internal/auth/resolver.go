package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/storage"
)

// TenantLookup carries the request signals that identify a tenant.
type TenantLookup struct {
	Header string
	Host   string
}

// ResolveTenant finds the active, correctly configured tenant a request is
// addressed to. The identifier header wins; the host subdomain is only
// consulted when the header is absent.
func (s *Service) ResolveTenant(ctx context.Context, lookup TenantLookup) (*models.Tenant, error) {
	tenant, err := s.resolveTenant(ctx, lookup)
	s.metrics.TenantResolutions.WithLabelValues(Kind(err)).Inc()
	return tenant, err
}

func (s *Service) resolveTenant(ctx context.Context, lookup TenantLookup) (*models.Tenant, error) {
	var (
		tenant *models.Tenant
		err    error
	)
	if ident := strings.TrimSpace(lookup.Header); ident != "" {
		tenant, err = s.tenantByIdentifier(ctx, ident)
	} else if sub := Subdomain(lookup.Host, s.opts.BaseDomain); sub != "" {
		tenant, err = s.store.GetTenantByHandle(ctx, sub)
	} else {
		return nil, ErrMissingTenantIdentifier
	}

	if errors.Is(err, storage.ErrTenantNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}
	if !tenant.Active {
		return nil, ErrTenantInactive
	}
	if !tenant.HasSigningSecret() {
		s.log.Errorw("tenant has no signing secret", "tenant_id", tenant.ID, "handle", tenant.Handle)
		return nil, ErrTenantMisconfigured
	}
	return tenant, nil
}

// tenantByIdentifier treats an all-digit identifier as a tenant id and
// anything else as a handle.
func (s *Service) tenantByIdentifier(ctx context.Context, ident string) (*models.Tenant, error) {
	if id, err := strconv.ParseInt(ident, 10, 64); err == nil {
		return s.store.GetTenant(ctx, id)
	}
	return s.store.GetTenantByHandle(ctx, strings.ToLower(ident))
}

// Subdomain extracts the tenant handle from a request host. With a base
// domain only a single label directly under it counts; without one the
// first label of a host with three or more labels is used.
func Subdomain(host, baseDomain string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}

	var sub string
	if baseDomain != "" {
		suffix := "." + strings.ToLower(strings.Trim(baseDomain, "."))
		if !strings.HasSuffix(host, suffix) {
			return ""
		}
		sub = strings.TrimSuffix(host, suffix)
		if strings.Contains(sub, ".") {
			return ""
		}
	} else {
		labels := strings.Split(host, ".")
		if len(labels) < 3 {
			return ""
		}
		sub = labels[0]
	}
	if sub == "www" {
		return ""
	}
	return sub
}
