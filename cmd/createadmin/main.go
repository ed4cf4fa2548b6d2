// Command createadmin creates the admin account, or resets its email and password
// when it already exists, from ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	database "github.com/sebuszqo/FinanceTracker/db"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}
	if cfg.Admin.Password == "" {
		log.Println("ADMIN_PASSWORD not set; skipping admin creation")
		return
	}
	if cfg.DB.ConnectionString == "" {
		log.Fatal(config.ErrMissingDBConnection)
	}

	dbService, err := database.NewDBService(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.DB.AutoMigrate {
		if err := dbService.Migrate(ctx); err != nil {
			log.Fatalf("Could not migrate database: %v", err)
		}
	}

	users := user.NewUserService(user.NewUserRepository(dbService.DB))
	admin, created, err := users.UpsertAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		log.Fatalf("Could not save admin %q: %v", cfg.Admin.Username, err)
	}
	if created {
		log.Printf("Admin %q created (id %s)", admin.Username, admin.ID)
	} else {
		log.Printf("Admin %q already existed; email and password reset", admin.Username)
	}
}
