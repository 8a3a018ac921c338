package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/meur/moonshade/internal/config"
	"github.com/meur/moonshade/internal/events"
	"github.com/meur/moonshade/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	backend := flag.String("storage", cfg.StorageBackend, "Storage backend (sqlite, redis)")
	file := flag.String("file", "", "Export document to import (moonshade-events.json)")
	token := flag.String("token", "", "Share token to import instead of a file")
	reseed := flag.Bool("clear", false, "Delete the stored document first so the default event is seeded again")
	flag.Parse()
	cfg.DBPath, cfg.StorageBackend = *dbPath, *backend

	config.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()

	if *reseed {
		if err := store.Clear(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to clear stored document")
		}
		log.Info().Msg("Cleared stored document")
	}

	es := events.New(store)

	switch {
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("Failed to read document")
		}
		if err := es.Import(ctx, data); err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("Failed to import document")
		}
	case *token != "":
		doc, err := events.DecodeShareToken(*token)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid share token")
		}
		if err := es.ImportDocument(ctx, doc); err != nil {
			log.Fatal().Err(err).Msg("Failed to import share token")
		}
	default:
		// Seeds the default event only when nothing is stored yet
		if err := es.Open(ctx, ""); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed default event")
		}
	}

	for _, ev := range es.Events() {
		log.Info().Str("event_id", ev.ID).Str("name", ev.Name).Bool("current", ev.Current).Msg("stored event")
	}
	log.Info().Msg("Seeding complete")
}
