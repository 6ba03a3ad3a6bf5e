package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tajious/backoffice/internal/config"
	"github.com/tajious/backoffice/internal/models"
)

// SequenceBaseline is the value a sequence holds before its first increment.
const SequenceBaseline int64 = 1000

// TenantSequence names the counter that allocates tenant ids.
const TenantSequence = "tenantId"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicate        = errors.New("record already exists")
)

// TxFunc runs inside Storage.Transaction. Implementations must use the given
// context and store for every call that belongs to the transaction.
type TxFunc func(ctx context.Context, tx Storage) error

type Storage interface {
	NextSequence(ctx context.Context, name string) (int64, error)
	Transaction(ctx context.Context, fn TxFunc) error

	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenant(ctx context.Context, id int64) (*models.Tenant, error)
	GetTenantByHandle(ctx context.Context, handle string) (*models.Tenant, error)
	TenantExists(ctx context.Context, name, handle string) (bool, error)
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error
	UpdateTenantConfig(ctx context.Context, config *models.TenantConfig) error
	ListTenants(ctx context.Context, page, pageSize int) ([]*models.Tenant, int64, error)

	CreateStaffUser(ctx context.Context, user *models.StaffUser) error
	GetStaffUser(ctx context.Context, tenantID int64, id string) (*models.StaffUser, error)
	GetStaffUserByEmail(ctx context.Context, tenantID int64, email string) (*models.StaffUser, error)
	ListStaffUsers(ctx context.Context, tenantID int64, filter StaffFilter) ([]*models.StaffUser, int64, error)
	UpdateStaffUser(ctx context.Context, user *models.StaffUser) error
	UpdateStaffLastLogin(ctx context.Context, tenantID int64, id string) error

	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, tenantID int64, id string) (*models.Customer, error)
	GetCustomerByEmail(ctx context.Context, tenantID int64, email string) (*models.Customer, error)
	UpdateCustomerLastLogin(ctx context.Context, tenantID int64, id string) error

	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, tenantID int64, id string) (*models.Product, error)
	ListProducts(ctx context.Context, tenantID int64, filter ProductFilter) ([]*models.Product, int64, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, tenantID int64, id string) error
}

// StaffFilter narrows ListStaffUsers. Page is 1-based.
type StaffFilter struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	SortBy   string
	SortDir  string
}

type ProductFilter struct {
	Page       int
	PageSize   int
	Search     string
	ActiveOnly bool
}

func (f StaffFilter) offset() int   { return (f.Page - 1) * f.PageSize }
func (f ProductFilter) offset() int { return (f.Page - 1) * f.PageSize }

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Storage, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgresStorage(BuildDSN(cfg))
	case "mongo":
		return NewMongoStorage(ctx, cfg.MongoURI, cfg.DBName)
	case "memory":
		return NewInMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}
