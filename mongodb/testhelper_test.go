package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// setupTestDB connects to the MongoDB given by TEST_MONGO_URI and returns a
// database unique to this test run. Tests are skipped when the variable is
// unset.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	mongoURI := os.Getenv("TEST_MONGO_URI")
	if mongoURI == "" {
		t.Skip("Skipping MongoDB integration tests: TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(mongoURI).SetConnectTimeout(10 * time.Second))
	if err != nil {
		t.Fatalf("mongo.Connect failed: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		t.Fatalf("mongo.Ping failed: %v", err)
	}

	dbName := fmt.Sprintf("test_rolegate_%d", time.Now().UnixNano())
	db := client.Database(dbName)

	t.Cleanup(func() {
		cleanupCtx := context.Background()
		if err := db.Drop(cleanupCtx); err != nil {
			t.Logf("Warning: failed to drop database %s during cleanup: %v", dbName, err)
		}
		if err := client.Disconnect(cleanupCtx); err != nil {
			t.Logf("Warning: failed to disconnect test client during cleanup: %v", err)
		}
	})
	return db
}
