// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloft/courseloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("product not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("products")}
}

// Create inserts a new product.
func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// GetByID retrieves a product by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

// GetByStripeProduct retrieves a product by its Stripe product ID within a tenant.
func (s *Store) GetByStripeProduct(ctx context.Context, tenantID primitive.ObjectID, stripeProductID string) (models.Product, error) {
	var p models.Product
	err := s.c.FindOne(ctx, bson.M{"tenant_id": tenantID, "stripe_product_id": stripeProductID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

// FindByTenant returns a tenant's active products.
func (s *Store) FindByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.Product, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID, "active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// EnsureIndexes creates indexes for the products collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "stripe_product_id", Value: 1}},
			Options: options.Index().SetName("idx_product_tenant_stripe"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
