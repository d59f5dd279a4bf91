// Package main seeds an empty bookstore with a sample catalog.
//
// The server must be stopped while seeding: the search index is opened
// exclusively.
//
// Usage:
//
//	DATA_PATH=~/Bookstore/data go run ./cmd/seed
//	go run ./cmd/seed -data-path ./data -force
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bookreview/bookreview-server/internal/logger"
	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/service"
	"github.com/bookreview/bookreview-server/internal/store/sqlite"
)

var (
	dataPath = flag.String("data-path", os.Getenv("DATA_PATH"), "Base path for databases and indexes")
	force    = flag.Bool("force", false, "Seed even if the catalog already has books")
)

type sampleBook struct {
	title, author, description string
	priceCents                 int64
	year                       int
	categories                 []string
}

var sampleCategories = []service.CategoryInput{
	{Name: "Science Fiction", Description: "Spaceships, futures, and other worlds."},
	{Name: "Fantasy", Description: "Magic and myth."},
	{Name: "History", Description: "What actually happened."},
	{Name: "Programming", Description: "Books for people who write software."},
}

var sampleBooks = []sampleBook{
	{"Dune", "Frank Herbert", "<p>Desert planet. <em>Spice.</em></p>", 1299, 1965, []string{"Science Fiction"}},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "An envoy on the planet Gethen.", 1150, 1969, []string{"Science Fiction"}},
	{"A Wizard of Earthsea", "Ursula K. Le Guin", "A young mage and his shadow.", 999, 1968, []string{"Fantasy"}},
	{"The Hobbit", "J. R. R. Tolkien", "There and back again.", 1099, 1937, []string{"Fantasy"}},
	{"SPQR", "Mary Beard", "A history of ancient Rome.", 1899, 2015, []string{"History"}},
	{"The Go Programming Language", "Alan Donovan, Brian Kernighan", "The Go book.", 3999, 2015, []string{"Programming"}},
	{"Structure and Interpretation of Computer Programs", "Harold Abelson, Gerald Sussman", "Wizard book.", 4599, 1985, []string{"Programming", "History"}},
}

func main() {
	flag.Parse()

	log := logger.New(logger.Config{Environment: "development"})

	if *dataPath == "" {
		log.Fatal("data path is required (-data-path or DATA_PATH)")
	}

	if err := run(context.Background(), *dataPath, *force, log); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}
}

func run(ctx context.Context, base string, force bool, log *logger.Logger) error {
	if err := os.MkdirAll(base, 0o700); err != nil {
		return fmt.Errorf("create data path: %w", err)
	}

	st, err := sqlite.Open(filepath.Join(base, "bookstore.db"), log.Logger)
	if err != nil {
		return err
	}
	defer st.Close()

	index, err := search.Open(search.Options{DataPath: base, Logger: log.Logger})
	if err != nil {
		return err
	}
	defer index.Close()

	counts, err := st.Counts(ctx)
	if err != nil {
		return err
	}
	if counts.Books > 0 && !force {
		log.Info("Catalog already has books, skipping", "books", counts.Books)
		return nil
	}

	catalog := service.NewCatalogService(st, index, index, log.Logger)

	categoryIDs := make(map[string]string, len(sampleCategories))
	for _, in := range sampleCategories {
		c, err := catalog.CreateCategory(ctx, in)
		if err != nil {
			return fmt.Errorf("create category %q: %w", in.Name, err)
		}
		categoryIDs[c.Name] = c.ID
	}

	for _, b := range sampleBooks {
		ids := make([]string, 0, len(b.categories))
		for _, name := range b.categories {
			ids = append(ids, categoryIDs[name])
		}
		if _, err := catalog.CreateBook(ctx, service.BookInput{
			Title:         b.title,
			Author:        b.author,
			Description:   b.description,
			PriceCents:    b.priceCents,
			PublishedYear: b.year,
			CategoryIDs:   ids,
		}); err != nil {
			return fmt.Errorf("create book %q: %w", b.title, err)
		}
	}

	log.Info("Catalog seeded", "categories", len(sampleCategories), "books", len(sampleBooks))
	return nil
}
