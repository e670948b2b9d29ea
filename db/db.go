package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"recipeportal/config"
)

// Collection names.
const (
	RecipesCollection = "recipes"
	UsersCollection   = "users"
)

// Database bundles the client and the collections the server uses.
type Database struct {
	Client  *mongo.Client
	Name    string
	Recipes *mongo.Collection
	Users   *mongo.Collection
}

// New wraps an already connected client.
func New(client *mongo.Client, name string) *Database {
	d := client.Database(name)
	return &Database{
		Client:  client,
		Name:    name,
		Recipes: d.Collection(RecipesCollection),
		Users:   d.Collection(UsersCollection),
	}
}

// Connect dials cfg.URI and retries the first ping with exponential backoff
// for up to cfg.ConnectRetry, so the server can start before the database.
func Connect(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*Database, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}

	ping := func() (struct{}, error) {
		pctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		return struct{}{}, client.Ping(pctx, readpref.Primary())
	}
	_, err = backoff.Retry(ctx, ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(cfg.ConnectRetry),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("mongo not reachable, retrying", zap.Error(err), zap.Duration("next", next))
		}),
	)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	log.Info("connected to mongo", zap.String("database", cfg.Database))
	return New(client, cfg.Database), nil
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	_, err := d.Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "googleId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("db: user indexes: %w", err)
	}

	_, err = d.Recipes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "dietaryType", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "cuisine", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("db: recipe indexes: %w", err)
	}
	return nil
}

func (d *Database) Disconnect(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// Ping reports whether the primary answers. Used by the health endpoint.
func (d *Database) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}
