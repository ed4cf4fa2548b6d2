package database

import (
	"context"
	_ "embed"
	"fmt"
	"log"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema. Every statement is idempotent so it is
// safe to run on each start.
func (s *DBService) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("could not apply schema: %w", err)
	}
	log.Println("Database schema is up to date")
	return nil
}
