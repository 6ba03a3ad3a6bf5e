package models

import "time"

// Customer is an end-shopper account of one tenant.
type Customer struct {
	ID        string     `json:"id" gorm:"primaryKey" bson:"_id"`
	TenantID  int64      `json:"tenant_id" gorm:"not null;uniqueIndex:idx_customer_tenant_email" bson:"tenant_id"`
	Email     string     `json:"email" gorm:"not null;uniqueIndex:idx_customer_tenant_email" bson:"email"`
	Name      string     `json:"name" bson:"name"`
	Phone     string     `json:"phone,omitempty" bson:"phone,omitempty"`
	Password  string     `json:"-" gorm:"not null" bson:"password"`
	Active    bool       `json:"active" gorm:"not null" bson:"active"`
	LastLogin *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}
