package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tajious/backoffice/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormStorage is the relational backend. Production runs it on Postgres.
type GormStorage struct {
	db *gorm.DB
}

func NewPostgresStorage(dsn string) (*GormStorage, error) {
	return NewGormStorage(postgres.Open(dsn))
}

func NewGormStorage(dialector gorm.Dialector) (*GormStorage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.TenantConfig{},
		&models.StaffUser{},
		&models.Customer{},
		&models.Product{},
		&models.Sequence{},
	); err != nil {
		return nil, err
	}

	return &GormStorage{db: db}, nil
}

func (s *GormStorage) NextSequence(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Raw(
		`INSERT INTO sequences (name, value) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		 RETURNING value`,
		name, SequenceBaseline+1,
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("next %s: %w", name, err)
	}
	return value, nil
}

func (s *GormStorage) Transaction(ctx context.Context, fn TxFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormStorage{db: tx})
	})
}

func (s *GormStorage) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	db := s.db.WithContext(ctx)
	if err := db.Omit("Config").Create(tenant).Error; err != nil {
		return translate(err)
	}
	tenant.Config.TenantID = tenant.ID
	return translate(db.Create(&tenant.Config).Error)
}

func (s *GormStorage) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	return s.findTenant(ctx, "id = ?", id)
}

func (s *GormStorage) GetTenantByHandle(ctx context.Context, handle string) (*models.Tenant, error) {
	return s.findTenant(ctx, "handle = ?", handle)
}

func (s *GormStorage) findTenant(ctx context.Context, query string, arg any) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Preload("Config").First(&tenant, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

func (s *GormStorage) TenantExists(ctx context.Context, name, handle string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("name = ? OR handle = ?", name, handle).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStorage) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	res := s.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", tenant.ID).Updates(map[string]any{
		"name":       tenant.Name,
		"active":     tenant.Active,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *GormStorage) UpdateTenantConfig(ctx context.Context, config *models.TenantConfig) error {
	return s.db.WithContext(ctx).Save(config).Error
}

func (s *GormStorage) ListTenants(ctx context.Context, page, pageSize int) ([]*models.Tenant, int64, error) {
	var tenants []*models.Tenant
	var total int64

	offset := (page - 1) * pageSize

	if err := s.db.WithContext(ctx).Model(&models.Tenant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := s.db.WithContext(ctx).Order("id").Offset(offset).Limit(pageSize).Find(&tenants).Error; err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

func (s *GormStorage) CreateStaffUser(ctx context.Context, user *models.StaffUser) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStorage) GetStaffUser(ctx context.Context, tenantID int64, id string) (*models.StaffUser, error) {
	var user models.StaffUser
	if err := s.db.WithContext(ctx).First(&user, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStorage) GetStaffUserByEmail(ctx context.Context, tenantID int64, email string) (*models.StaffUser, error) {
	var user models.StaffUser
	if err := s.db.WithContext(ctx).First(&user, "tenant_id = ? AND email = ?", tenantID, email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStorage) ListStaffUsers(ctx context.Context, tenantID int64, filter StaffFilter) ([]*models.StaffUser, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.StaffUser{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", searchPattern, searchPattern)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// SortBy and SortDir are whitelisted by the handler's validator.
	var users []*models.StaffUser
	err := query.Order(filter.SortBy + " " + filter.SortDir).
		Offset(filter.offset()).
		Limit(filter.PageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *GormStorage) UpdateStaffUser(ctx context.Context, user *models.StaffUser) error {
	res := s.db.WithContext(ctx).Model(&models.StaffUser{}).
		Where("tenant_id = ? AND id = ?", user.TenantID, user.ID).
		Updates(map[string]any{
			"name":       user.Name,
			"role":       user.Role,
			"active":     user.Active,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GormStorage) UpdateStaffLastLogin(ctx context.Context, tenantID int64, id string) error {
	return s.db.WithContext(ctx).Model(&models.StaffUser{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("last_login", time.Now()).Error
}

func (s *GormStorage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return translate(s.db.WithContext(ctx).Create(customer).Error)
}

func (s *GormStorage) GetCustomer(ctx context.Context, tenantID int64, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (s *GormStorage) GetCustomerByEmail(ctx context.Context, tenantID int64, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "tenant_id = ? AND email = ?", tenantID, email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (s *GormStorage) UpdateCustomerLastLogin(ctx context.Context, tenantID int64, id string) error {
	return s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("last_login", time.Now()).Error
}

func (s *GormStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	return translate(s.db.WithContext(ctx).Create(product).Error)
}

func (s *GormStorage) GetProduct(ctx context.Context, tenantID int64, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *GormStorage) ListProducts(ctx context.Context, tenantID int64, filter ProductFilter) ([]*models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("tenant_id = ?", tenantID)
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*models.Product
	err := query.Order("created_at desc").
		Offset(filter.offset()).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *GormStorage) UpdateProduct(ctx context.Context, product *models.Product) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", product.TenantID, product.ID).
		Updates(map[string]any{
			"title":       product.Title,
			"description": product.Description,
			"price_cents": product.PriceCents,
			"stock":       product.Stock,
			"active":      product.Active,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *GormStorage) DeleteProduct(ctx context.Context, tenantID int64, id string) error {
	res := s.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
