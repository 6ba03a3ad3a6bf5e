package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tajious/backoffice/internal/models"
)

// InMemoryStorage keeps everything in process. Each call holds one lock, and
// Transaction holds it for the whole callback and restores a snapshot on error.
type InMemoryStorage struct {
	mu   sync.Mutex
	data *memData
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{data: newMemData()}
}

func (s *InMemoryStorage) NextSequence(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.NextSequence(ctx, name)
}

func (s *InMemoryStorage) Transaction(ctx context.Context, fn TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, s.data); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *InMemoryStorage) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateTenant(ctx, tenant)
}

func (s *InMemoryStorage) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetTenant(ctx, id)
}

func (s *InMemoryStorage) GetTenantByHandle(ctx context.Context, handle string) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetTenantByHandle(ctx, handle)
}

func (s *InMemoryStorage) TenantExists(ctx context.Context, name, handle string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.TenantExists(ctx, name, handle)
}

func (s *InMemoryStorage) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateTenant(ctx, tenant)
}

func (s *InMemoryStorage) UpdateTenantConfig(ctx context.Context, config *models.TenantConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateTenantConfig(ctx, config)
}

func (s *InMemoryStorage) ListTenants(ctx context.Context, page, pageSize int) ([]*models.Tenant, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ListTenants(ctx, page, pageSize)
}

func (s *InMemoryStorage) CreateStaffUser(ctx context.Context, user *models.StaffUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateStaffUser(ctx, user)
}

func (s *InMemoryStorage) GetStaffUser(ctx context.Context, tenantID int64, id string) (*models.StaffUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetStaffUser(ctx, tenantID, id)
}

func (s *InMemoryStorage) GetStaffUserByEmail(ctx context.Context, tenantID int64, email string) (*models.StaffUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetStaffUserByEmail(ctx, tenantID, email)
}

func (s *InMemoryStorage) ListStaffUsers(ctx context.Context, tenantID int64, filter StaffFilter) ([]*models.StaffUser, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ListStaffUsers(ctx, tenantID, filter)
}

func (s *InMemoryStorage) UpdateStaffUser(ctx context.Context, user *models.StaffUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateStaffUser(ctx, user)
}

func (s *InMemoryStorage) UpdateStaffLastLogin(ctx context.Context, tenantID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateStaffLastLogin(ctx, tenantID, id)
}

func (s *InMemoryStorage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateCustomer(ctx, customer)
}

func (s *InMemoryStorage) GetCustomer(ctx context.Context, tenantID int64, id string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetCustomer(ctx, tenantID, id)
}

func (s *InMemoryStorage) GetCustomerByEmail(ctx context.Context, tenantID int64, email string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetCustomerByEmail(ctx, tenantID, email)
}

func (s *InMemoryStorage) UpdateCustomerLastLogin(ctx context.Context, tenantID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateCustomerLastLogin(ctx, tenantID, id)
}

func (s *InMemoryStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateProduct(ctx, product)
}

func (s *InMemoryStorage) GetProduct(ctx context.Context, tenantID int64, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.GetProduct(ctx, tenantID, id)
}

func (s *InMemoryStorage) ListProducts(ctx context.Context, tenantID int64, filter ProductFilter) ([]*models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ListProducts(ctx, tenantID, filter)
}

func (s *InMemoryStorage) UpdateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateProduct(ctx, product)
}

func (s *InMemoryStorage) DeleteProduct(ctx context.Context, tenantID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.DeleteProduct(ctx, tenantID, id)
}

// memData is the unlocked store. It satisfies Storage so a transaction
// callback can use it directly while InMemoryStorage holds the lock.
type memData struct {
	tenants   map[int64]*models.Tenant
	staff     map[string]*models.StaffUser
	customers map[string]*models.Customer
	products  map[string]*models.Product
	sequences map[string]int64
}

func newMemData() *memData {
	return &memData{
		tenants:   make(map[int64]*models.Tenant),
		staff:     make(map[string]*models.StaffUser),
		customers: make(map[string]*models.Customer),
		products:  make(map[string]*models.Product),
		sequences: make(map[string]int64),
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.tenants {
		c.tenants[k] = copyTenant(v)
	}
	for k, v := range d.staff {
		u := *v
		c.staff[k] = &u
	}
	for k, v := range d.customers {
		cu := *v
		c.customers[k] = &cu
	}
	for k, v := range d.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range d.sequences {
		c.sequences[k] = v
	}
	return c
}

func copyTenant(t *models.Tenant) *models.Tenant {
	c := *t
	c.Config.Credentials = copyCredentials(t.Config.Credentials)
	return &c
}

func copyCredentials(creds map[string]any) map[string]any {
	if creds == nil {
		return nil
	}
	out := make(map[string]any, len(creds))
	for k, v := range creds {
		out[k] = v
	}
	return out
}

func (d *memData) NextSequence(_ context.Context, name string) (int64, error) {
	value, ok := d.sequences[name]
	if !ok {
		value = SequenceBaseline
	}
	value++
	d.sequences[name] = value
	return value, nil
}

func (d *memData) Transaction(ctx context.Context, fn TxFunc) error {
	return fn(ctx, d)
}

func (d *memData) CreateTenant(_ context.Context, tenant *models.Tenant) error {
	if _, exists := d.tenants[tenant.ID]; exists {
		return ErrDuplicate
	}
	for _, t := range d.tenants {
		if t.Name == tenant.Name || t.Handle == tenant.Handle {
			return ErrDuplicate
		}
	}
	now := time.Now()
	tenant.CreatedAt, tenant.UpdatedAt = now, now
	tenant.Config.TenantID = tenant.ID
	tenant.Config.CreatedAt, tenant.Config.UpdatedAt = now, now
	d.tenants[tenant.ID] = copyTenant(tenant)
	return nil
}

func (d *memData) GetTenant(_ context.Context, id int64) (*models.Tenant, error) {
	tenant, exists := d.tenants[id]
	if !exists {
		return nil, ErrTenantNotFound
	}
	return copyTenant(tenant), nil
}

func (d *memData) GetTenantByHandle(_ context.Context, handle string) (*models.Tenant, error) {
	for _, tenant := range d.tenants {
		if tenant.Handle == handle {
			return copyTenant(tenant), nil
		}
	}
	return nil, ErrTenantNotFound
}

func (d *memData) TenantExists(_ context.Context, name, handle string) (bool, error) {
	for _, tenant := range d.tenants {
		if tenant.Name == name || tenant.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

func (d *memData) UpdateTenant(_ context.Context, tenant *models.Tenant) error {
	existing, exists := d.tenants[tenant.ID]
	if !exists {
		return ErrTenantNotFound
	}
	for id, t := range d.tenants {
		if id != tenant.ID && t.Name == tenant.Name {
			return ErrDuplicate
		}
	}
	existing.Name = tenant.Name
	existing.Active = tenant.Active
	existing.UpdatedAt = time.Now()
	return nil
}

func (d *memData) UpdateTenantConfig(_ context.Context, config *models.TenantConfig) error {
	tenant, exists := d.tenants[config.TenantID]
	if !exists {
		return ErrTenantNotFound
	}
	config.UpdatedAt = time.Now()
	tenant.Config = *config
	tenant.Config.Credentials = copyCredentials(config.Credentials)
	return nil
}

func (d *memData) ListTenants(_ context.Context, page, pageSize int) ([]*models.Tenant, int64, error) {
	tenants := make([]*models.Tenant, 0, len(d.tenants))
	for _, tenant := range d.tenants {
		tenants = append(tenants, copyTenant(tenant))
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].ID < tenants[j].ID })
	total := int64(len(tenants))
	return paginate(tenants, (page-1)*pageSize, pageSize), total, nil
}

func (d *memData) CreateStaffUser(_ context.Context, user *models.StaffUser) error {
	for _, u := range d.staff {
		if u.ID == user.ID || (u.TenantID == user.TenantID && u.Email == user.Email) {
			return ErrDuplicate
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	u := *user
	d.staff[user.ID] = &u
	return nil
}

func (d *memData) GetStaffUser(_ context.Context, tenantID int64, id string) (*models.StaffUser, error) {
	user, exists := d.staff[id]
	if !exists || user.TenantID != tenantID {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (d *memData) GetStaffUserByEmail(_ context.Context, tenantID int64, email string) (*models.StaffUser, error) {
	for _, user := range d.staff {
		if user.TenantID == tenantID && user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (d *memData) ListStaffUsers(_ context.Context, tenantID int64, filter StaffFilter) ([]*models.StaffUser, int64, error) {
	var users []*models.StaffUser
	for _, user := range d.staff {
		if user.TenantID != tenantID {
			continue
		}
		if filter.Search != "" && !containsFold(user.Email, filter.Search) && !containsFold(user.Name, filter.Search) {
			continue
		}
		if filter.Role != "" && string(user.Role) != filter.Role {
			continue
		}
		u := *user
		users = append(users, &u)
	}

	sort.Slice(users, func(i, j int) bool {
		less := staffLess(users[i], users[j], filter.SortBy)
		if filter.SortDir == "desc" {
			return staffLess(users[j], users[i], filter.SortBy)
		}
		return less
	})

	total := int64(len(users))
	return paginate(users, filter.offset(), filter.PageSize), total, nil
}

func staffLess(a, b *models.StaffUser, field string) bool {
	switch field {
	case "email":
		return a.Email < b.Email
	case "name":
		return a.Name < b.Name
	case "role":
		return a.Role < b.Role
	case "last_login":
		return lastLogin(a.LastLogin).Before(lastLogin(b.LastLogin))
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func lastLogin(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (d *memData) UpdateStaffUser(_ context.Context, user *models.StaffUser) error {
	existing, exists := d.staff[user.ID]
	if !exists || existing.TenantID != user.TenantID {
		return ErrUserNotFound
	}
	existing.Name = user.Name
	existing.Role = user.Role
	existing.Active = user.Active
	existing.UpdatedAt = time.Now()
	return nil
}

func (d *memData) UpdateStaffLastLogin(_ context.Context, tenantID int64, id string) error {
	user, exists := d.staff[id]
	if !exists || user.TenantID != tenantID {
		return ErrUserNotFound
	}
	now := time.Now()
	user.LastLogin = &now
	return nil
}

func (d *memData) CreateCustomer(_ context.Context, customer *models.Customer) error {
	for _, c := range d.customers {
		if c.ID == customer.ID || (c.TenantID == customer.TenantID && c.Email == customer.Email) {
			return ErrDuplicate
		}
	}
	now := time.Now()
	customer.CreatedAt, customer.UpdatedAt = now, now
	c := *customer
	d.customers[customer.ID] = &c
	return nil
}

func (d *memData) GetCustomer(_ context.Context, tenantID int64, id string) (*models.Customer, error) {
	customer, exists := d.customers[id]
	if !exists || customer.TenantID != tenantID {
		return nil, ErrCustomerNotFound
	}
	c := *customer
	return &c, nil
}

func (d *memData) GetCustomerByEmail(_ context.Context, tenantID int64, email string) (*models.Customer, error) {
	for _, customer := range d.customers {
		if customer.TenantID == tenantID && customer.Email == email {
			c := *customer
			return &c, nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (d *memData) UpdateCustomerLastLogin(_ context.Context, tenantID int64, id string) error {
	customer, exists := d.customers[id]
	if !exists || customer.TenantID != tenantID {
		return ErrCustomerNotFound
	}
	now := time.Now()
	customer.LastLogin = &now
	return nil
}

func (d *memData) CreateProduct(_ context.Context, product *models.Product) error {
	if _, exists := d.products[product.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	p := *product
	d.products[product.ID] = &p
	return nil
}

func (d *memData) GetProduct(_ context.Context, tenantID int64, id string) (*models.Product, error) {
	product, exists := d.products[id]
	if !exists || product.TenantID != tenantID {
		return nil, ErrProductNotFound
	}
	p := *product
	return &p, nil
}

func (d *memData) ListProducts(_ context.Context, tenantID int64, filter ProductFilter) ([]*models.Product, int64, error) {
	var products []*models.Product
	for _, product := range d.products {
		if product.TenantID != tenantID {
			continue
		}
		if filter.ActiveOnly && !product.Active {
			continue
		}
		if filter.Search != "" && !containsFold(product.Title, filter.Search) {
			continue
		}
		p := *product
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	total := int64(len(products))
	return paginate(products, filter.offset(), filter.PageSize), total, nil
}

func (d *memData) UpdateProduct(_ context.Context, product *models.Product) error {
	existing, exists := d.products[product.ID]
	if !exists || existing.TenantID != product.TenantID {
		return ErrProductNotFound
	}
	existing.Title = product.Title
	existing.Description = product.Description
	existing.PriceCents = product.PriceCents
	existing.Stock = product.Stock
	existing.Active = product.Active
	existing.UpdatedAt = time.Now()
	return nil
}

func (d *memData) DeleteProduct(_ context.Context, tenantID int64, id string) error {
	product, exists := d.products[id]
	if !exists || product.TenantID != tenantID {
		return ErrProductNotFound
	}
	delete(d.products, id)
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) || offset < 0 {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
