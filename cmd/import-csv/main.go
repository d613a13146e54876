package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"animeshelf/internal/catalog"
	"animeshelf/internal/importer"
	"animeshelf/internal/shelf"
	"animeshelf/pkg/database"
	"animeshelf/pkg/utils"
)

func main() {
	var (
		in      = flag.String("in", "data/shelf.csv", "input CSV path")
		timeout = flag.Duration("timeout", 10*time.Minute, "overall import timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open %s: %v", *in, err)
	}
	defer f.Close()

	repo := shelf.NewRepo(db)
	client := catalog.New(utils.LoadCatalogConfig())
	imp := importer.NewImporter(repo, client, nil)

	result, err := imp.ImportCSV(ctx, f)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	for _, rowErr := range result.Errors {
		log.Printf("  ⚠ %s: %s", rowErr.Row, rowErr.Message)
	}
	log.Printf("✅ imported %d entries from %s (%d rows failed)", result.SuccessCount, *in, len(result.Errors))
}
