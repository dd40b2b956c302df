package cache

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures the MongoDB backend.
type MongoOptions struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// linkDoc is the stored document. The content hash is the _id.
type linkDoc struct {
	Hash      string    `bson:"_id"`
	Link      string    `bson:"link"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoCache stores links as documents keyed by hash.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
	ttl    time.Duration
}

// NewMongoCache connects to MongoDB. The driver connects lazily, so an
// unreachable server is reported by the first operation. With a positive
// ttl a TTL index on updated_at is created, which does need the server.
func NewMongoCache(ctx context.Context, opts MongoOptions, ttl time.Duration) (*MongoCache, error) {
	if opts.Database == "" {
		opts.Database = "congratulator"
	}
	if opts.Collection == "" {
		opts.Collection = "postcards"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, unavailable(err, "connect", opts.Database)
	}
	c := &MongoCache{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
		ttl:    ttl,
	}

	if ttl > 0 {
		if err := c.ensureTTLIndex(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}
	return c, nil
}

func (c *MongoCache) ensureTTLIndex(ctx context.Context) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(c.ttl.Seconds())),
	})
	if err != nil {
		return unavailable(err, "create index", c.coll.Name())
	}
	return nil
}

// Get retrieves a link.
func (c *MongoCache) Get(ctx context.Context, key string) (string, bool, error) {
	var doc linkDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(err, "get", key)
	}
	return doc.Link, true, nil
}

// Set upserts a link.
func (c *MongoCache) Set(ctx context.Context, key, value string) error {
	_, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"link": value, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return unavailable(err, "set", key)
	}
	return nil
}

// Delete removes a link.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	if _, err := c.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return unavailable(err, "delete", key)
	}
	return nil
}

// Close disconnects the client.
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

var _ Cache = (*MongoCache)(nil)
