package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin             Role = "admin"
	RoleConfirmationAgent Role = "confirmation_agent"
	RoleStockAgent        Role = "stock_agent"
	RoleCustomer          Role = "customer"
)

// DefaultStaffRoles is the closed set of staff roles used when none is configured.
var DefaultStaffRoles = []Role{RoleAdmin, RoleConfirmationAgent, RoleStockAgent}

// IdentityClass separates staff tokens from customer tokens.
type IdentityClass string

const (
	IdentityStaff    IdentityClass = "staff"
	IdentityCustomer IdentityClass = "customer"
)

type Claims struct {
	TenantID int64         `json:"tenant_id"`
	Class    IdentityClass `json:"class"`
	Role     Role          `json:"role"`
	jwt.RegisteredClaims
}

type StaffUser struct {
	ID        string     `json:"id" gorm:"primaryKey" bson:"_id"`
	TenantID  int64      `json:"tenant_id" gorm:"not null;uniqueIndex:idx_staff_tenant_email" bson:"tenant_id"`
	Email     string     `json:"email" gorm:"not null;uniqueIndex:idx_staff_tenant_email" bson:"email"`
	Name      string     `json:"name" bson:"name"`
	Password  string     `json:"-" gorm:"not null" bson:"password"` // Hashed password
	Role      Role       `json:"role" gorm:"not null" bson:"role"`
	Active    bool       `json:"active" gorm:"not null" bson:"active"`
	LastLogin *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Subject   any    `json:"user"`
}
