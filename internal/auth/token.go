package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tajious/backoffice/internal/models"
)

type Credentials struct {
	Email    string
	Password string
}

// Identity is the acting subject of a request, scoped to one tenant.
type Identity struct {
	SubjectID string
	TenantID  int64
	Class     models.IdentityClass
	Role      models.Role
	Email     string

	Staff    *models.StaffUser
	Customer *models.Customer
}

type Token struct {
	Value     string
	ExpiresAt time.Time
	Identity  *Identity
}

// ExpiresIn is the remaining lifetime in seconds at issue time.
func (t *Token) ExpiresIn(now time.Time) int {
	return int(t.ExpiresAt.Sub(now).Seconds())
}

// IssueToken authenticates credentials inside the tenant and mints a token
// signed with the tenant's current secret. Unknown email and wrong password
// both yield ErrInvalidCredentials.
func (s *Service) IssueToken(ctx context.Context, tenant *models.Tenant, class models.IdentityClass, creds Credentials) (*Token, error) {
	token, err := s.issueToken(ctx, tenant, class, creds)
	s.metrics.Logins.WithLabelValues(string(class), Kind(err)).Inc()
	return token, err
}

func (s *Service) issueToken(ctx context.Context, tenant *models.Tenant, class models.IdentityClass, creds Credentials) (*Token, error) {
	if tenant == nil {
		return nil, ErrServerMisconfigured
	}
	if !tenant.HasSigningSecret() {
		return nil, ErrTenantMisconfigured
	}

	subj, err := s.subjectByEmail(ctx, tenant.ID, class, NormalizeEmail(creds.Email))
	if errors.Is(err, errNoSubject) {
		burnPasswordCheck(creds.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", class, err)
	}
	if !CheckPassword(subj.hash, creds.Password) {
		return nil, ErrInvalidCredentials
	}
	if !subj.active {
		return nil, ErrAccountInactive
	}

	now := s.now()
	expiresAt := now.Add(s.TTL(class))
	claims := models.Claims{
		TenantID: tenant.ID,
		Class:    class,
		Role:     subj.role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subj.id,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tenant.Config.SigningSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.touchLastLogin(ctx, tenant.ID, class, subj.id)

	return &Token{
		Value:     signed,
		ExpiresAt: expiresAt,
		Identity:  subj.identity(tenant.ID, class),
	}, nil
}

// Verify checks a bearer token against the tenant's current secret and
// re-loads the subject, so a disabled account stops working immediately.
func (s *Service) Verify(ctx context.Context, tenant *models.Tenant, raw string, class models.IdentityClass) (*Identity, error) {
	identity, err := s.verify(ctx, tenant, raw, class)
	s.metrics.Verifications.WithLabelValues(string(class), Kind(err)).Inc()
	return identity, err
}

func (s *Service) verify(ctx context.Context, tenant *models.Tenant, raw string, class models.IdentityClass) (*Identity, error) {
	if tenant == nil {
		return nil, ErrServerMisconfigured
	}
	if raw == "" {
		return nil, ErrMissingToken
	}
	if !tenant.HasSigningSecret() {
		return nil, ErrTenantMisconfigured
	}

	claims := &models.Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(tenant.Config.SigningSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TenantID != tenant.ID || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.Class != class {
		return nil, ErrIdentityMismatch
	}

	subj, err := s.subjectByID(ctx, tenant.ID, class, claims.Subject)
	if errors.Is(err, errNoSubject) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", class, err)
	}
	if !subj.active {
		return nil, ErrIdentityNotFound
	}
	return subj.identity(tenant.ID, class), nil
}

func (subj *subject) identity(tenantID int64, class models.IdentityClass) *Identity {
	return &Identity{
		SubjectID: subj.id,
		TenantID:  tenantID,
		Class:     class,
		Role:      subj.role,
		Email:     subj.email,
		Staff:     subj.staff,
		Customer:  subj.customer,
	}
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>"
// header. It returns ErrMissingToken for an empty header and ErrInvalidToken
// for any other scheme.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
