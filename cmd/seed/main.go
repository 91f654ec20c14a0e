// Command main seeds the database with generated users and scratches.
package main

import (
	"flag"
	"log"

	"scratch/internal/config"
	"scratch/internal/database"
	"scratch/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "number of users to create")
	numScratches := flag.Int("scratches", 500, "number of scratches to create")
	clean := flag.Bool("clean", false, "clear existing data before seeding")
	dryRun := flag.Bool("dry-run", false, "generate data without writing it")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:     *numUsers,
		NumScratches: *numScratches,
		ShouldClean:  *clean,
		DryRun:       *dryRun,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
