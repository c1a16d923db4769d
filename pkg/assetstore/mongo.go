package assetstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default Mongo names used when MongoOptions leaves them empty.
const (
	DefaultMongoDatabase   = "serenity"
	DefaultMongoCollection = "assets"
)

// MongoStore keeps each asset as a document keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Put upserts rec.
func (s *MongoStore) Put(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return RetryWithBackoff(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
		return transient(err)
	})
}

// Get reads the record for id.
func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := RetryWithBackoff(ctx, func() error {
		err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFound(id)
		}
		return transient(err)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetAllKeys returns every document id in sorted order.
func (s *MongoStore) GetAllKeys(ctx context.Context) ([]string, error) {
	var ids []string
	err := RetryWithBackoff(ctx, func() error {
		ids = ids[:0]
		opts := options.Find().
			SetProjection(bson.M{"_id": 1}).
			SetSort(bson.D{{Key: "_id", Value: 1}})
		cur, err := s.coll.Find(ctx, bson.M{}, opts)
		if err != nil {
			return transient(err)
		}
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var doc struct {
				ID string `bson:"_id"`
			}
			if err := cur.Decode(&doc); err != nil {
				return err
			}
			ids = append(ids, doc.ID)
		}
		return transient(cur.Err())
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes id.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	return RetryWithBackoff(ctx, func() error {
		_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
		return transient(err)
	})
}

// Count returns the number of documents.
func (s *MongoStore) Count(ctx context.Context) (int, error) {
	var n int64
	err := RetryWithBackoff(ctx, func() error {
		var err error
		n, err = s.coll.CountDocuments(ctx, bson.M{})
		return transient(err)
	})
	return int(n), err
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
