package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/willdavis/bananagrams/internal/dictionary"
	"github.com/willdavis/bananagrams/internal/httpserver"
	"github.com/willdavis/bananagrams/internal/recordstore"
	"github.com/willdavis/bananagrams/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dict, err := dictionary.LoadDefault()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionaries")
	}

	db, err := recordstore.OpenDB(getEnv("DB_PATH", "./data/bananagrams.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := recordstore.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	sessions := store.NewMemoryStore()
	srv := httpserver.New(sessions, db, dict)

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting bananagrams solver server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
