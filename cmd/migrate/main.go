package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sinbc2003/cluade2/internal/config"
	"github.com/sinbc2003/cluade2/internal/repository/postgres"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	sourceURL := os.Getenv("MIGRATIONS_URL")
	if sourceURL == "" {
		sourceURL = "file://migrations"
	}

	fmt.Printf("Running migrations against %s:%d...\n", cfg.Usage.Host, cfg.Usage.Port)

	if err := postgres.RunMigrations(cfg.Usage.DSN(), sourceURL); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
}
