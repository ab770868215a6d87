// Command main runs the database seeder for BookLink.
package main

import (
	"flag"
	"log"

	"booklink/internal/config"
	"booklink/internal/database"
	"booklink/internal/seed"
)

func main() {
	numReaders := flag.Int("readers", 40, "Number of readers to create")
	numBooks := flag.Int("books", 120, "Number of books to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("BookLink Database Seeder")
	log.Printf("Target: %d readers, %d books, clean=%v\n", *numReaders, *numBooks, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumReaders:  *numReaders,
		NumBooks:    *numBooks,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
