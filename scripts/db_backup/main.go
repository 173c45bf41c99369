package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garnizeh/buddyup/internal/config"
	"github.com/garnizeh/buddyup/internal/db"
)

// db_backup writes a consistent snapshot of the SQLite database with
// VACUUM INTO, so it is safe to run against a live server.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	out := flag.String("out", "", "Backup file (default <dsn>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseDriver != config.DriverSQLite {
		fmt.Fprintf(os.Stderr, "Backup error: only the sqlite driver is supported, use pg_dump for %s\n", cfg.DatabaseDriver)
		os.Exit(1)
	}

	dst := *out
	if dst == "" {
		dst = cfg.DatabaseDSN + ".bak"
	}
	if _, err := os.Stat(dst); err == nil {
		fmt.Fprintf(os.Stderr, "Backup error: %s already exists\n", dst)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if _, err := database.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup written to %s.\n", dst)
}
