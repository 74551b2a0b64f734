// internal/app/store/domains/domainstore.go
package domainstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/courseloft/courseloft/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateDomain = errors.New("this domain is already registered")
	ErrDefaultExists   = errors.New("tenant already has a default domain")
	ErrNotFound        = errors.New("domain not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("domains")}
}

// Create inserts a new domain mapping. Hostnames are stored lowercased.
func (s *Store) Create(ctx context.Context, d models.Domain) (models.Domain, error) {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.Domain = strings.ToLower(strings.TrimSpace(d.Domain))
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, d)
	if err != nil {
		if wafflemongo.IsDup(err) {
			// Either the hostname or the tenant's default slot is taken.
			if d.IsDefault {
				return models.Domain{}, ErrDefaultExists
			}
			return models.Domain{}, ErrDuplicateDomain
		}
		return models.Domain{}, err
	}
	return d, nil
}

// GetByID retrieves a domain by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Domain, error) {
	var d models.Domain
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Domain{}, ErrNotFound
		}
		return models.Domain{}, err
	}
	return d, nil
}

// GetActiveByHostname retrieves an active domain by exact hostname match.
func (s *Store) GetActiveByHostname(ctx context.Context, hostname string) (models.Domain, error) {
	var d models.Domain
	filter := bson.M{
		"domain":    strings.ToLower(strings.TrimSpace(hostname)),
		"is_active": true,
	}
	err := s.c.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Domain{}, ErrNotFound
		}
		return models.Domain{}, err
	}
	return d, nil
}

// FindActiveContaining retrieves active domains whose hostname contains the
// given fragment (the candidate subdomain during resolution), sorted by
// hostname so the match order is stable.
func (s *Store) FindActiveContaining(ctx context.Context, fragment string) ([]models.Domain, error) {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return nil, nil
	}
	filter := bson.M{
		"domain":    bson.M{"$regex": regexp.QuoteMeta(fragment)},
		"is_active": true,
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "domain", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var domains []models.Domain
	if err := cur.All(ctx, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// FindByTenant returns all domains for a tenant.
func (s *Store) FindByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.Domain, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID},
		options.Find().SetSort(bson.D{{Key: "domain", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var domains []models.Domain
	if err := cur.All(ctx, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// Update modifies a domain's mutable fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, d models.Domain) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if d.Domain != "" {
		set["domain"] = strings.ToLower(strings.TrimSpace(d.Domain))
	}
	set["is_root_domain"] = d.IsRootDomain
	set["is_active"] = d.IsActive
	set["is_default"] = d.IsDefault
	set["redirect_to"] = d.RedirectTo
	if d.LandingPageID != nil {
		set["landing_page_id"] = *d.LandingPageID
	}

	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			if d.IsDefault {
				return ErrDefaultExists
			}
			return ErrDuplicateDomain
		}
		return err
	}
	return nil
}

// Delete removes a domain by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the domains collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Unique hostname across all tenants
		{
			Keys:    bson.D{{Key: "domain", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_domain_hostname"),
		},
		// At most one default domain per tenant
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "is_default", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_default": true}).
				SetName("idx_domain_default_per_tenant"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}},
			Options: options.Index().SetName("idx_domain_tenant"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
