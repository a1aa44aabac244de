package main

import (
	"log"
	"os"

	"github.com/samirrijal/seacorridor/internal/adapters/postgres"
	"github.com/samirrijal/seacorridor/internal/adapters/sqlite"
	"github.com/samirrijal/seacorridor/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}
	direction := os.Args[1]
	if direction != "up" && direction != "down" {
		log.Fatalf("unknown command: %s", direction)
	}

	cfg, err := config.Load("seacorridor-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	switch cfg.Database.Driver {
	case "postgres":
		if err := postgres.Migrate(cfg.Database.MigrateURL(), direction); err != nil {
			log.Fatalf("migrate %s: %v", direction, err)
		}
	case "sqlite":
		// Open applies pending up migrations.
		store, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer store.Close()
		if direction == "down" {
			if err := store.Migrate("down"); err != nil {
				log.Fatalf("migrate down: %v", err)
			}
		}
	}

	log.Printf("migrations %s applied (%s)", direction, cfg.Database.Driver)
}
