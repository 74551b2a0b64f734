// internal/app/store/programs/programstore.go
package programstore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloft/courseloft/internal/app/system/status"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("program not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("programs")}
}

// Create inserts a new program.
func (s *Store) Create(ctx context.Context, p models.Program) (models.Program, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.TitleCI = text.Fold(p.Title)
	if p.Status == "" {
		p.Status = status.Active
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Program{}, err
	}
	return p, nil
}

// GetByID retrieves a program by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Program, error) {
	var p models.Program
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Program{}, ErrNotFound
		}
		return models.Program{}, err
	}
	return p, nil
}

// FindFeatured returns active featured programs for a tenant.
func (s *Store) FindFeatured(ctx context.Context, tenantID primitive.ObjectID, limit int64) ([]models.Program, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"featured":  true,
		"status":    status.Active,
	}
	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "title_ci", Value: 1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var programs []models.Program
	if err := cur.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// FindByTenant returns all active programs for a tenant.
func (s *Store) FindByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.Program, error) {
	filter := bson.M{"tenant_id": tenantID, "status": status.Active}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var programs []models.Program
	if err := cur.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// EnsureIndexes creates indexes for the programs collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "featured", Value: 1}},
			Options: options.Index().SetName("idx_program_tenant_featured"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "title_ci", Value: 1}},
			Options: options.Index().SetName("idx_program_tenant_title"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
