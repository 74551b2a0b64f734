// internal/app/store/tenants/tenantstore.go
package tenantstore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloft/courseloft/internal/app/system/status"
	"github.com/courseloft/courseloft/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateSlug = errors.New("a tenant with this slug already exists")
	ErrNotFound      = errors.New("tenant not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tenants")}
}

// Create inserts a new tenant.
func (s *Store) Create(ctx context.Context, t models.Tenant) (models.Tenant, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.NameCI = text.Fold(t.Name)
	if t.Status == "" {
		t.Status = status.Active
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, t)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Tenant{}, ErrDuplicateSlug
		}
		return models.Tenant{}, err
	}
	return t, nil
}

// GetByID retrieves a tenant by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Tenant, error) {
	var t models.Tenant
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Tenant{}, ErrNotFound
		}
		return models.Tenant{}, err
	}
	return t, nil
}

// GetBySlug retrieves a tenant by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Tenant, error) {
	var t models.Tenant
	err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Tenant{}, ErrNotFound
		}
		return models.Tenant{}, err
	}
	return t, nil
}

// GetAgencyOwner retrieves the tenant flagged is_agency_owner=true.
// Returns ErrNotFound if no tenant carries the flag.
func (s *Store) GetAgencyOwner(ctx context.Context) (models.Tenant, error) {
	var t models.Tenant
	err := s.c.FindOne(ctx, bson.M{"is_agency_owner": true}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Tenant{}, ErrNotFound
		}
		return models.Tenant{}, err
	}
	return t, nil
}

// Update modifies a tenant's mutable fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, t models.Tenant) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if t.Name != "" {
		set["name"] = t.Name
		set["name_ci"] = text.Fold(t.Name)
	}
	if t.Slug != "" {
		set["slug"] = t.Slug
	}
	if t.Status != "" {
		set["status"] = t.Status
	}
	set["allow_public_read"] = t.AllowPublicRead
	set["settings"] = t.Settings
	set["stripe"] = t.Stripe

	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

// Delete removes a tenant by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns tenants matching the given filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Tenant, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tenants []models.Tenant
	if err := cur.All(ctx, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// Count returns the number of tenants matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// EnsureIndexes creates indexes for the tenants collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Unique slug for URL routing and subdomain fallback
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_tenant_slug"),
		},
		// At most one agency-owner tenant
		{
			Keys: bson.D{{Key: "is_agency_owner", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_agency_owner": true}).
				SetName("idx_tenant_agency_owner"),
		},
		// Case-insensitive name for sorting
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_tenant_name_ci"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_tenant_status"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// EnsureAgencyOwner creates the agency-owner tenant if none exists.
// Returns the existing or newly created tenant.
func (s *Store) EnsureAgencyOwner(ctx context.Context, name, slug string) (models.Tenant, error) {
	t, err := s.GetAgencyOwner(ctx)
	if err == nil {
		return t, nil
	}
	if err != ErrNotFound {
		return models.Tenant{}, err
	}

	return s.Create(ctx, models.Tenant{
		Name:          name,
		Slug:          slug,
		IsAgencyOwner: true,
		Status:        status.Active,
	})
}
