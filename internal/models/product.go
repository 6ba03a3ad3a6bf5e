package models

import "time"

type Product struct {
	ID          string    `json:"id" gorm:"primaryKey" bson:"_id"`
	TenantID    int64     `json:"tenant_id" gorm:"not null;index" bson:"tenant_id"`
	Title       string    `json:"title" gorm:"not null" bson:"title"`
	Description string    `json:"description" bson:"description"`
	PriceCents  int64     `json:"price_cents" gorm:"not null" bson:"price_cents"`
	Stock       int       `json:"stock" gorm:"not null" bson:"stock"`
	Active      bool      `json:"active" gorm:"not null" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Sequence is a named counter used to allocate collision-free identifiers.
type Sequence struct {
	Name  string `gorm:"primaryKey" bson:"_id"`
	Value int64  `gorm:"not null" bson:"value"`
}
