package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/buddyup/db"
	"github.com/garnizeh/buddyup/internal/config"
	"github.com/garnizeh/buddyup/internal/db"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	driver := flag.String("driver", "", "Database driver (sqlite or postgres); overrides config")
	dsn := flag.String("dsn", "", "Database DSN; overrides config")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *driver != "" {
		cfg.DatabaseDriver = *driver
	}
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	}

	database, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database initialized successfully (%s).\n", cfg.DatabaseDriver)
}
