package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/tajious/backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collTenants   = "tenants"
	collStaff     = "staff_users"
	collCustomers = "customers"
	collProducts  = "products"
	collSequences = "sequences"
)

// MongoStorage is the document backend. Transactions need a replica set.
type MongoStorage struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStorage(ctx context.Context, uri, database string) (*MongoStorage, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStorage{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStorage) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		collTenants: {
			{Keys: bson.D{{Key: "handle", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		collStaff: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "email", Value: 1}}, Options: unique},
		},
		collCustomers: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "email", Value: 1}}, Options: unique},
		},
		collProducts: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// NextSequence increments in place; a missing counter is seeded at the
// baseline (a concurrent seed loses on the _id key) and the increment retried.
func (s *MongoStorage) NextSequence(ctx context.Context, name string) (int64, error) {
	coll := s.db.Collection(collSequences)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < 2; attempt++ {
		var seq models.Sequence
		err := coll.FindOneAndUpdate(ctx,
			bson.M{"_id": name},
			bson.M{"$inc": bson.M{"value": int64(1)}},
			opts,
		).Decode(&seq)
		if err == nil {
			return seq.Value, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("next %s: %w", name, err)
		}
		_, err = coll.InsertOne(ctx, models.Sequence{Name: name, Value: SequenceBaseline})
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return 0, fmt.Errorf("next %s: counter missing after seed", name)
}

func (s *MongoStorage) Transaction(ctx context.Context, fn TxFunc) error {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return fn(ctx, s)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *MongoStorage) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	now := time.Now()
	tenant.CreatedAt, tenant.UpdatedAt = now, now
	tenant.Config.TenantID = tenant.ID
	tenant.Config.CreatedAt, tenant.Config.UpdatedAt = now, now
	_, err := s.db.Collection(collTenants).InsertOne(ctx, tenant)
	return translateMongo(err)
}

func (s *MongoStorage) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	return s.findTenant(ctx, bson.M{"_id": id})
}

func (s *MongoStorage) GetTenantByHandle(ctx context.Context, handle string) (*models.Tenant, error) {
	return s.findTenant(ctx, bson.M{"handle": handle})
}

func (s *MongoStorage) findTenant(ctx context.Context, filter bson.M) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.Collection(collTenants).FindOne(ctx, filter).Decode(&tenant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	tenant.Config.TenantID = tenant.ID
	return &tenant, nil
}

func (s *MongoStorage) TenantExists(ctx context.Context, name, handle string) (bool, error) {
	count, err := s.db.Collection(collTenants).CountDocuments(ctx,
		bson.M{"$or": bson.A{bson.M{"name": name}, bson.M{"handle": handle}}},
		options.Count().SetLimit(1),
	)
	return count > 0, err
}

func (s *MongoStorage) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	res, err := s.db.Collection(collTenants).UpdateByID(ctx, tenant.ID, bson.M{"$set": bson.M{
		"name":       tenant.Name,
		"active":     tenant.Active,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *MongoStorage) UpdateTenantConfig(ctx context.Context, config *models.TenantConfig) error {
	config.UpdatedAt = time.Now()
	res, err := s.db.Collection(collTenants).UpdateByID(ctx, config.TenantID, bson.M{"$set": bson.M{
		"config": config,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *MongoStorage) ListTenants(ctx context.Context, page, pageSize int) ([]*models.Tenant, int64, error) {
	coll := s.db.Collection(collTenants)
	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		SetProjection(bson.M{"config": 0})
	tenants := []*models.Tenant{}
	if err := findAll(ctx, coll, bson.M{}, opts, &tenants); err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

func (s *MongoStorage) CreateStaffUser(ctx context.Context, user *models.StaffUser) error {
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := s.db.Collection(collStaff).InsertOne(ctx, user)
	return translateMongo(err)
}

func (s *MongoStorage) GetStaffUser(ctx context.Context, tenantID int64, id string) (*models.StaffUser, error) {
	return findOne[models.StaffUser](ctx, s.db.Collection(collStaff), bson.M{"tenant_id": tenantID, "_id": id}, ErrUserNotFound)
}

func (s *MongoStorage) GetStaffUserByEmail(ctx context.Context, tenantID int64, email string) (*models.StaffUser, error) {
	return findOne[models.StaffUser](ctx, s.db.Collection(collStaff), bson.M{"tenant_id": tenantID, "email": email}, ErrUserNotFound)
}

func (s *MongoStorage) ListStaffUsers(ctx context.Context, tenantID int64, filter StaffFilter) ([]*models.StaffUser, int64, error) {
	query := bson.M{"tenant_id": tenantID}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{bson.M{"email": pattern}, bson.M{"name": pattern}}
	}
	if filter.Role != "" {
		query["role"] = filter.Role
	}

	coll := s.db.Collection(collStaff)
	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	dir := 1
	if filter.SortDir == "desc" {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: filter.SortBy, Value: dir}}).
		SetSkip(int64(filter.offset())).
		SetLimit(int64(filter.PageSize))
	users := []*models.StaffUser{}
	if err := findAll(ctx, coll, query, opts, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *MongoStorage) UpdateStaffUser(ctx context.Context, user *models.StaffUser) error {
	res, err := s.db.Collection(collStaff).UpdateOne(ctx,
		bson.M{"tenant_id": user.TenantID, "_id": user.ID},
		bson.M{"$set": bson.M{
			"name":       user.Name,
			"role":       user.Role,
			"active":     user.Active,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoStorage) UpdateStaffLastLogin(ctx context.Context, tenantID int64, id string) error {
	_, err := s.db.Collection(collStaff).UpdateOne(ctx,
		bson.M{"tenant_id": tenantID, "_id": id},
		bson.M{"$set": bson.M{"last_login": time.Now()}},
	)
	return err
}

func (s *MongoStorage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	now := time.Now()
	customer.CreatedAt, customer.UpdatedAt = now, now
	_, err := s.db.Collection(collCustomers).InsertOne(ctx, customer)
	return translateMongo(err)
}

func (s *MongoStorage) GetCustomer(ctx context.Context, tenantID int64, id string) (*models.Customer, error) {
	return findOne[models.Customer](ctx, s.db.Collection(collCustomers), bson.M{"tenant_id": tenantID, "_id": id}, ErrCustomerNotFound)
}

func (s *MongoStorage) GetCustomerByEmail(ctx context.Context, tenantID int64, email string) (*models.Customer, error) {
	return findOne[models.Customer](ctx, s.db.Collection(collCustomers), bson.M{"tenant_id": tenantID, "email": email}, ErrCustomerNotFound)
}

func (s *MongoStorage) UpdateCustomerLastLogin(ctx context.Context, tenantID int64, id string) error {
	_, err := s.db.Collection(collCustomers).UpdateOne(ctx,
		bson.M{"tenant_id": tenantID, "_id": id},
		bson.M{"$set": bson.M{"last_login": time.Now()}},
	)
	return err
}

func (s *MongoStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	_, err := s.db.Collection(collProducts).InsertOne(ctx, product)
	return translateMongo(err)
}

func (s *MongoStorage) GetProduct(ctx context.Context, tenantID int64, id string) (*models.Product, error) {
	return findOne[models.Product](ctx, s.db.Collection(collProducts), bson.M{"tenant_id": tenantID, "_id": id}, ErrProductNotFound)
}

func (s *MongoStorage) ListProducts(ctx context.Context, tenantID int64, filter ProductFilter) ([]*models.Product, int64, error) {
	query := bson.M{"tenant_id": tenantID}
	if filter.ActiveOnly {
		query["active"] = true
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
	}

	coll := s.db.Collection(collProducts)
	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.offset())).
		SetLimit(int64(filter.PageSize))
	products := []*models.Product{}
	if err := findAll(ctx, coll, query, opts, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *MongoStorage) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.db.Collection(collProducts).UpdateOne(ctx,
		bson.M{"tenant_id": product.TenantID, "_id": product.ID},
		bson.M{"$set": bson.M{
			"title":       product.Title,
			"description": product.Description,
			"price_cents": product.PriceCents,
			"stock":       product.Stock,
			"active":      product.Active,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *MongoStorage) DeleteProduct(ctx context.Context, tenantID int64, id string) error {
	res, err := s.db.Collection(collProducts).DeleteOne(ctx, bson.M{"tenant_id": tenantID, "_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, notFound error) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return &out, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions, out any) error {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func translateMongo(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
