package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/garnizeh/buddyup/internal/config"
)

// db_restore copies a backup over the SQLite database file. Stop the
// server before running it.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	in := flag.String("in", "", "Backup file (default <dsn>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseDriver != config.DriverSQLite {
		fmt.Fprintf(os.Stderr, "Restore error: only the sqlite driver is supported\n")
		os.Exit(1)
	}

	src := *in
	if src == "" {
		src = cfg.DatabaseDSN + ".bak"
	}
	if err := copyFile(src, cfg.DatabaseDSN); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restored from %s.\n", src)
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	tmp := dst + ".restore"
	dstFile, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(tmp)
		return err
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
