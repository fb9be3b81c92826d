package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id         UUID PRIMARY KEY,
	owner_id   UUID NOT NULL,
	url        TEXT NOT NULL,
	title      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT bookmarks_owner_url_unique UNIQUE (owner_id, url)
);

CREATE INDEX IF NOT EXISTS bookmarks_owner_created_idx
	ON bookmarks (owner_id, created_at DESC);
`

// Creates the bookmarks table, the (owner_id, url) unique constraint, and
// the owner-scoped listing index. Run with POSTGRES_DSN set, or pass the DSN
// as the first argument.
func main() {
	dsn := os.Getenv("POSTGRES_DSN")
	if len(os.Args) > 1 {
		dsn = os.Args[1]
	}
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set and no DSN argument given")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	fmt.Println("Schema applied")
}
