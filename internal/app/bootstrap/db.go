// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	achievementstore "github.com/courseloft/courseloft/internal/app/store/achievements"
	customerstore "github.com/courseloft/courseloft/internal/app/store/customers"
	domainstore "github.com/courseloft/courseloft/internal/app/store/domains"
	enrollmentstore "github.com/courseloft/courseloft/internal/app/store/enrollments"
	lessonstore "github.com/courseloft/courseloft/internal/app/store/lessons"
	oauthstatestore "github.com/courseloft/courseloft/internal/app/store/oauthstates"
	pagestore "github.com/courseloft/courseloft/internal/app/store/pages"
	productstore "github.com/courseloft/courseloft/internal/app/store/products"
	programstore "github.com/courseloft/courseloft/internal/app/store/programs"
	subscriptionstore "github.com/courseloft/courseloft/internal/app/store/subscriptions"
	tenantstore "github.com/courseloft/courseloft/internal/app/store/tenants"
	transactionstore "github.com/courseloft/courseloft/internal/app/store/transactions"
	userstore "github.com/courseloft/courseloft/internal/app/store/users"
	videoprogressstore "github.com/courseloft/courseloft/internal/app/store/videoprogress"
	videostore "github.com/courseloft/courseloft/internal/app/store/videos"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and verifies it with a ping
// before the rest of startup proceeds.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	return DBDeps{
		CourseLoftMongoClient:   client,
		CourseLoftMongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// indexer is implemented by every store that maintains indexes.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureSchema creates the indexes every store depends on. Uniqueness
// guarantees (one agency owner, one default domain per tenant, one
// enrollment per user and program) live in these indexes, so startup fails
// hard if any of them cannot be built.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.CourseLoftMongoDatabase

	stores := map[string]indexer{
		"tenants":        tenantstore.New(db),
		"domains":        domainstore.New(db),
		"users":          userstore.New(db),
		"pages":          pagestore.New(db),
		"programs":       programstore.New(db),
		"videos":         videostore.New(db),
		"lessons":        lessonstore.New(db),
		"enrollments":    enrollmentstore.New(db),
		"video_progress": videoprogressstore.New(db),
		"products":       productstore.New(db),
		"subscriptions":  subscriptionstore.New(db),
		"transactions":   transactionstore.New(db),
		"customers":      customerstore.New(db),
		"achievements":   achievementstore.New(db),
		"oauth_states":   oauthstatestore.New(db),
	}

	for name, s := range stores {
		if err := s.EnsureIndexes(ctx); err != nil {
			logger.Error("index creation failed",
				zap.String("store", name), zap.Error(err))
			return fmt.Errorf("ensure indexes for %s: %w", name, err)
		}
	}

	logger.Info("database indexes ensured", zap.Int("stores", len(stores)))
	return nil
}
