package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	clerk_id TEXT UNIQUE NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	fcm_token TEXT,
	last_reminded_date DATE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	target_date DATE,
	plan JSONB NOT NULL,
	progress INT NOT NULL DEFAULT 0,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	progress_log JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS dreams (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	mood TEXT,
	tags JSONB NOT NULL DEFAULT '[]',
	analysis JSONB,
	dream_date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS worldview_blends (
	user_id TEXT PRIMARY KEY,
	stages JSONB NOT NULL,
	primary_stage TEXT NOT NULL,
	summary TEXT NOT NULL,
	assessed_at TIMESTAMPTZ NOT NULL
);
`

// SetupTestDB connects to the test database and ensures the schema
// exists. Tests that need it are skipped when no database is configured.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	if _, err := pool.Exec(ctx, testSchema); err != nil {
		t.Fatalf("Failed to ensure test schema: %v", err)
	}

	return pool
}

// CleanupTestDB removes rows created by tests (test user IDs are prefixed).
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	for _, q := range []string{
		"DELETE FROM goals WHERE user_id LIKE 'user_test_%'",
		"DELETE FROM dreams WHERE user_id LIKE 'user_test_%'",
		"DELETE FROM worldview_blends WHERE user_id LIKE 'user_test_%'",
		"DELETE FROM users WHERE clerk_id LIKE 'user_test_%'",
	} {
		if _, err := pool.Exec(ctx, q); err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
		}
	}
	pool.Close()
}

// TestClerkID returns a unique per-run Clerk user ID.
func TestClerkID(prefix string) string {
	return fmt.Sprintf("user_test_%s_%d", prefix, time.Now().UnixNano())
}

// GenerateMockClerkJWT generates a mock session token for testing.
func GenerateMockClerkJWT(clerkID string) (string, error) {
	secretKey := []byte("test-secret-key-for-testing-only")

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * 24).Unix(),
		"azp": "test-app-id",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
