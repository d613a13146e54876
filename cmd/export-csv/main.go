package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"animeshelf/internal/importer"
	"animeshelf/internal/shelf"
	"animeshelf/pkg/database"
)

func main() {
	out := flag.String("out", "data/shelf.csv", "output CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("ensure output dir: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create %s: %v", *out, err)
	}
	defer f.Close()

	repo := shelf.NewRepo(db)
	if err := importer.ExportCSV(ctx, repo, f); err != nil {
		log.Fatalf("export failed: %v", err)
	}

	log.Printf("✅ exported shelf to %s", *out)
}
