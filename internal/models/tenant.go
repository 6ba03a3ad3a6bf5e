package models

import (
	"time"
)

// Tenant is one isolated store ("client") of the back-office.
type Tenant struct {
	ID        int64        `json:"id" gorm:"primaryKey;autoIncrement:false" bson:"_id"`
	Handle    string       `json:"handle" gorm:"not null;uniqueIndex" bson:"handle"`
	Name      string       `json:"name" gorm:"not null;uniqueIndex" bson:"name"`
	Active    bool         `json:"active" gorm:"not null" bson:"active"`
	Config    TenantConfig `json:"-" gorm:"foreignKey:TenantID" bson:"config"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// TenantConfig holds the per-tenant secrets. It is never rendered to clients.
type TenantConfig struct {
	TenantID      int64          `json:"-" gorm:"primaryKey;autoIncrement:false" bson:"-"`
	SigningSecret string         `json:"-" gorm:"not null" bson:"signing_secret"`
	Credentials   map[string]any `json:"-" gorm:"serializer:json" bson:"credentials,omitempty"`
	CreatedAt     time.Time      `json:"-" bson:"created_at"`
	UpdatedAt     time.Time      `json:"-" bson:"updated_at"`
}

// HasSigningSecret reports whether tokens can be issued or verified for the tenant.
func (t *Tenant) HasSigningSecret() bool {
	return t.Config.SigningSecret != ""
}

// CredentialNames lists the configured third-party credential keys without their values.
func (c *TenantConfig) CredentialNames() []string {
	names := make([]string, 0, len(c.Credentials))
	for name := range c.Credentials {
		names = append(names, name)
	}
	return names
}
