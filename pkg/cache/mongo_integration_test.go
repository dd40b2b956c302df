//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestMongoCache_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := NewMongoCache(ctx, MongoOptions{URI: uri, Database: "congratulator_test", Collection: "links"}, time.Hour)
	if err != nil {
		t.Fatalf("NewMongoCache() error: %v", err)
	}
	defer func() {
		_ = c.coll.Drop(ctx)
		c.Close()
	}()

	exercise(t, c)
}
