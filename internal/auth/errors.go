package auth

import "errors"

// Pipeline errors. Callers match them with errors.Is.
var (
	ErrMissingTenantIdentifier = errors.New("missing tenant identifier")
	ErrTenantNotFound          = errors.New("tenant not found")
	ErrTenantInactive          = errors.New("tenant inactive")
	ErrTenantMisconfigured     = errors.New("tenant misconfigured")
	ErrServerMisconfigured     = errors.New("server misconfigured")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")

	ErrMissingToken     = errors.New("missing token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrIdentityMismatch = errors.New("identity mismatch")
	ErrIdentityNotFound = errors.New("identity not found")

	ErrForbidden = errors.New("forbidden")

	ErrPasswordTooLong = errors.New("password longer than 72 bytes")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrMissingTenantIdentifier, "missing_tenant_identifier"},
	{ErrTenantNotFound, "tenant_not_found"},
	{ErrTenantInactive, "tenant_inactive"},
	{ErrTenantMisconfigured, "tenant_misconfigured"},
	{ErrServerMisconfigured, "server_misconfigured"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrAccountInactive, "account_inactive"},
	{ErrMissingToken, "missing_token"},
	{ErrInvalidToken, "invalid_token"},
	{ErrTokenExpired, "token_expired"},
	{ErrIdentityMismatch, "identity_mismatch"},
	{ErrIdentityNotFound, "identity_not_found"},
	{ErrForbidden, "forbidden"},
}

// Kind names the pipeline error wrapped in err, "ok" for nil and "error"
// for anything else. Used as a metrics label.
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "error"
}
