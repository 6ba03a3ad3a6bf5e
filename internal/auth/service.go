package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tajious/backoffice/internal/metrics"
	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/storage"
	"go.uber.org/zap"
)

type Options struct {
	// BaseDomain is the storefront apex (shop.example.com); requests to
	// <handle>.<BaseDomain> resolve to that tenant.
	BaseDomain  string
	StaffTTL    time.Duration
	CustomerTTL time.Duration
	StaffRoles  []models.Role
}

// Service runs the tenant-scoped authentication pipeline: resolve the tenant,
// issue or verify a token against its secret, then gate on role.
type Service struct {
	store      storage.Storage
	opts       Options
	staffRoles map[models.Role]struct{}
	log        *zap.SugaredLogger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(store storage.Storage, opts Options, log *zap.SugaredLogger, m *metrics.Metrics) *Service {
	if opts.StaffTTL == 0 {
		opts.StaffTTL = 30 * 24 * time.Hour
	}
	if opts.CustomerTTL == 0 {
		opts.CustomerTTL = 7 * 24 * time.Hour
	}
	if len(opts.StaffRoles) == 0 {
		opts.StaffRoles = models.DefaultStaffRoles
	}
	roles := make(map[models.Role]struct{}, len(opts.StaffRoles))
	for _, r := range opts.StaffRoles {
		roles[r] = struct{}{}
	}
	return &Service{
		store:      store,
		opts:       opts,
		staffRoles: roles,
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
}

// IsStaffRole reports whether role belongs to the configured staff set.
func (s *Service) IsStaffRole(role models.Role) bool {
	_, ok := s.staffRoles[role]
	return ok
}

func (s *Service) TTL(class models.IdentityClass) time.Duration {
	if class == models.IdentityCustomer {
		return s.opts.CustomerTTL
	}
	return s.opts.StaffTTL
}

// subject is the common view of a staff user or customer.
type subject struct {
	id       string
	email    string
	role     models.Role
	active   bool
	hash     string
	staff    *models.StaffUser
	customer *models.Customer
}

func staffSubject(u *models.StaffUser) *subject {
	return &subject{id: u.ID, email: u.Email, role: u.Role, active: u.Active, hash: u.Password, staff: u}
}

func customerSubject(c *models.Customer) *subject {
	return &subject{id: c.ID, email: c.Email, role: models.RoleCustomer, active: c.Active, hash: c.Password, customer: c}
}

var errNoSubject = errors.New("subject not found")

func (s *Service) subjectByEmail(ctx context.Context, tenantID int64, class models.IdentityClass, email string) (*subject, error) {
	switch class {
	case models.IdentityStaff:
		u, err := s.store.GetStaffUserByEmail(ctx, tenantID, email)
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, errNoSubject
		}
		if err != nil {
			return nil, err
		}
		return staffSubject(u), nil
	case models.IdentityCustomer:
		c, err := s.store.GetCustomerByEmail(ctx, tenantID, email)
		if errors.Is(err, storage.ErrCustomerNotFound) {
			return nil, errNoSubject
		}
		if err != nil {
			return nil, err
		}
		return customerSubject(c), nil
	default:
		return nil, fmt.Errorf("%w: unknown identity class %q", ErrServerMisconfigured, class)
	}
}

func (s *Service) subjectByID(ctx context.Context, tenantID int64, class models.IdentityClass, id string) (*subject, error) {
	switch class {
	case models.IdentityStaff:
		u, err := s.store.GetStaffUser(ctx, tenantID, id)
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, errNoSubject
		}
		if err != nil {
			return nil, err
		}
		return staffSubject(u), nil
	case models.IdentityCustomer:
		c, err := s.store.GetCustomer(ctx, tenantID, id)
		if errors.Is(err, storage.ErrCustomerNotFound) {
			return nil, errNoSubject
		}
		if err != nil {
			return nil, err
		}
		return customerSubject(c), nil
	default:
		return nil, fmt.Errorf("%w: unknown identity class %q", ErrServerMisconfigured, class)
	}
}

func (s *Service) touchLastLogin(ctx context.Context, tenantID int64, class models.IdentityClass, id string) {
	var err error
	if class == models.IdentityStaff {
		err = s.store.UpdateStaffLastLogin(ctx, tenantID, id)
	} else {
		err = s.store.UpdateCustomerLastLogin(ctx, tenantID, id)
	}
	if err != nil {
		s.log.Warnw("failed to record last login", "tenant_id", tenantID, "subject", id, "error", err)
	}
}
