// Package mongo implements the store interfaces over a MongoDB database.
// Users and credentials live in their own collections, keyed by app-minted
// ULID ids, with a unique index enforcing username uniqueness.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moltenlabs/credvault/internal/vault/store"
)

const (
	usersCollection       = "users"
	credentialsCollection = "credentials"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to the MongoDB deployment at uri and pings it before
// returning, so a bad connection string fails at startup rather than on the
// first request.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (s *Store) Users() store.Users {
	return &usersRepo{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Credentials() store.Credentials {
	return &credentialsRepo{coll: s.db.Collection(credentialsCollection)}
}

// EnsureIndexes creates the indexes the adapters rely on. Mongo treats index
// creation as idempotent, so this is safe to run on every startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	users := s.db.Collection(usersCollection)
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: ensure users indexes: %w", err)
	}

	creds := s.db.Collection(credentialsCollection)
	_, err = creds.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "deleted", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "title", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: ensure credentials indexes: %w", err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mapNotFound translates the driver's no-document sentinel to the store's.
func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}
