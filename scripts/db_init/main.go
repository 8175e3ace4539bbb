package main

import (
	"context"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/account"
	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("JOBBOARD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// run migrations and seed using internal/db.Migrate
	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	// Optional admin bootstrap; signup never creates admins.
	email, password := os.Getenv("JOBBOARD_ADMIN_EMAIL"), os.Getenv("JOBBOARD_ADMIN_PASSWORD")
	if email != "" && password != "" {
		accounts := account.NewService(sqlite.New(database, nil).Repository().User, nil, nil)
		u, err := accounts.CreateAdmin(ctx, os.Getenv("JOBBOARD_ADMIN_NAME"), email, password)
		switch {
		case apperr.Is(err, apperr.CodeDuplicate):
			fmt.Printf("Admin %s already exists.\n", email)
		case err != nil:
			fmt.Fprintf(os.Stderr, "Admin bootstrap error: %v\n", err)
			os.Exit(1)
		default:
			fmt.Printf("Created admin %s (id %d).\n", u.Email, u.ID)
		}
	}

	fmt.Println("Database initialized successfully.")
}
