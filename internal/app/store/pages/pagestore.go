// internal/app/store/pages/pagestore.go
package pagestore

import (
	"context"
	"errors"
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
	ErrDuplicateSlug = errors.New("a page with this slug already exists for the tenant")
	ErrNotFound      = errors.New("page not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("pages")}
}

// Create inserts a new page. Content must already be sanitized by the caller.
func (s *Store) Create(ctx context.Context, p models.Page) (models.Page, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Page{}, ErrDuplicateSlug
		}
		return models.Page{}, err
	}
	return p, nil
}

// GetPublished retrieves a published page by tenant and slug.
func (s *Store) GetPublished(ctx context.Context, tenantID primitive.ObjectID, slug string) (models.Page, error) {
	var p models.Page
	filter := bson.M{
		"tenant_id": tenantID,
		"slug":      strings.ToLower(strings.TrimSpace(slug)),
		"published": true,
	}
	err := s.c.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Page{}, ErrNotFound
		}
		return models.Page{}, err
	}
	return p, nil
}

// GetByID retrieves a page by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Page, error) {
	var p models.Page
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Page{}, ErrNotFound
		}
		return models.Page{}, err
	}
	return p, nil
}

// Update modifies a page's content fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p models.Page) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
		"published":  p.Published,
	}
	if p.Title != "" {
		set["title"] = p.Title
	}
	if p.Content != "" {
		set["content"] = p.Content
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// CountByTenant returns the number of pages a tenant has.
func (s *Store) CountByTenant(ctx context.Context, tenantID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
}

// EnsureIndexes creates indexes for the pages collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_page_tenant_slug"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
