//go:build integration

package snapshot

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := NewMongoStore(ctx, uri, "symbol_test")
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer st.Close(ctx)
	checkRoundTrip(t, st)
}
