package main

import (
	"context"
	"flag"
	"log"

	"github.com/ethanbaker/smartmarket/pkg/config"
	"github.com/ethanbaker/smartmarket/pkg/database"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
)

// Seed the ledger from a YAML catalog
func main() {
	catalogPath := flag.String("catalog", "catalog.yaml", "path to the YAML seed catalog")
	flag.Parse()

	cfg, err := config.Load(config.EnvFile())
	if err != nil {
		log.Fatalf("[SEED]: Failed to load config: %v", err)
	}

	catalog, err := ledger.LoadCatalogFile(*catalogPath)
	if err != nil {
		log.Fatalf("[SEED]: %v", err)
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("[SEED]: Failed to open database: %v", err)
	}
	defer database.Close(db)

	store := ledger.NewStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatalf("[SEED]: Failed to migrate ledger: %v", err)
	}

	appended, err := ledger.New(store).Seed(context.Background(), catalog)
	if err != nil {
		log.Fatalf("[SEED]: Stopped after %d facts: %v", appended, err)
	}

	log.Printf("[SEED]: Seeded %d items with %d facts from %s\n", len(catalog.Items), appended, *catalogPath)
}
