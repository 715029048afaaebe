package db

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/userposts/internal/db/schema"
)

// EnsureSchema creates the users and posts tables when they are missing.
// It is safe to call on every start; existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	file := "sqlite.sql"
	if IsPostgres(db) {
		file = "postgres.sql"
	}

	ddl, err := fs.ReadFile(schema.FS, file)
	if err != nil {
		return fmt.Errorf("db: read schema %s: %w", file, err)
	}

	for _, stmt := range splitStatements(string(ddl)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: apply schema %s: %w", file, err)
		}
	}
	return nil
}

func splitStatements(ddl string) []string {
	var out []string
	for _, stmt := range strings.Split(ddl, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
