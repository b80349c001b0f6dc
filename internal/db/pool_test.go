package db

import (
	"context"
	"strings"
	"testing"
)

func TestNewPool_InvalidDSN(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://localhost:notaport/db", PoolOptions{})
	if err == nil || !strings.Contains(err.Error(), "parse dsn") {
		t.Fatalf("expected parse dsn error, got %v", err)
	}
}
