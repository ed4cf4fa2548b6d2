package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DBService represents a service that interacts with a database.
type DBService struct {
	DB *sql.DB
}

// NewDBService opens a pgx-backed connection pool for connStr and verifies it with a ping.
func NewDBService(connStr string) (*DBService, error) {
	if connStr == "" {
		return nil, fmt.Errorf("missing DB_CONNECTION_STRING in environment variables")
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %w", err)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	return &DBService{DB: db}, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	if err := s.DB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.DB.Stats()
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)
	return stats
}

// Close closes the database connection.
func (s *DBService) Close() error {
	log.Println("Closing database connection")
	return s.DB.Close()
}
