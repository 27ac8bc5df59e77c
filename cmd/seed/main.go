// seed creates the schema and inserts test accounts into the local dev
// database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ErlanBelekov/account-recovery/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reset_events (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email      TEXT NOT NULL,
	event      TEXT NOT NULL,
	client_ip  TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS reset_events_created_at_idx ON reset_events (created_at);
`

type accountSpec struct {
	email    string
	password string
}

var accounts = []accountSpec{
	{"seed@test.local", "seedpassword1"},
	{"alice@test.local", "alicepassword1"},
	{"bob@test.local", "bobpassword1"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	var inserted, skipped int
	for _, spec := range accounts {
		// MinCost is enough for throwaway dev accounts; the server hashes
		// real resets at the configured cost.
		hash, err := bcrypt.GenerateFromPassword([]byte(spec.password), bcrypt.MinCost)
		if err != nil {
			log.Fatalf("hash password for %s: %v", spec.email, err)
		}

		tag, err := pool.Exec(ctx, `
			INSERT INTO accounts (email, password_hash)
			VALUES ($1, $2)
			ON CONFLICT (email) DO NOTHING`,
			spec.email, string(hash),
		)
		if err != nil {
			log.Fatalf("insert account %s: %v", spec.email, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
		} else {
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Accounts created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — request a reset link:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/requestResetPassword \\")
	fmt.Println("      -d 'email=seed@test.local'")
	fmt.Println()
	fmt.Println("    # ENV=local logs the email instead of sending it; copy the")
	fmt.Println("    # token from the link in the server log, then:")
	fmt.Println()
	fmt.Println("  Step 2 — set a new password:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/resetPassword \\")
	fmt.Println("      -d 'token=TOKEN' -d 'password=newpassword1' \\")
	fmt.Println("      -d 'confirmPassword=newpassword1'")
}
