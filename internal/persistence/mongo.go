package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the MongoDB backend. The merge key is stored as _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri and pings the server before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// Merge implements Store with an upserting $set.
func (s *MongoStore) Merge(ctx context.Context, collection, key string, doc any) error {
	m, err := toDocument(doc)
	if err != nil {
		return err
	}
	delete(m, "_id")

	opts := options.Update().SetUpsert(true)
	_, err = s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": m}, opts)
	if err != nil {
		return fmt.Errorf("failed to merge %s/%s: %w", collection, key, err)
	}
	return nil
}

// Latest implements Store with a descending sort on orderField.
func (s *MongoStore) Latest(ctx context.Context, collection, orderField string, filter Filter, out any) error {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	opts := options.FindOne().SetSort(bson.D{{Key: orderField, Value: -1}})
	err := s.db.Collection(collection).FindOne(ctx, query, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find latest in %s: %w", collection, err)
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
