package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Caliovent/korean-party-functions/internal/catalog"
	"github.com/Caliovent/korean-party-functions/internal/daily"
	"github.com/Caliovent/korean-party-functions/internal/httpserver"
	"github.com/Caliovent/korean-party-functions/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	cfg.warnings()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("failed to load catalog")
	}
	log.Info().Interface("counts", cat.Stats()).Msg("catalog loaded")

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	profiles := store.NewSQLiteStore(db)
	if cfg.ProfileStore == "memory" {
		// accounts and daily results stay in sqlite
		log.Warn().Msg("profiles are kept in memory and lost on restart")
		profiles = store.NewMemoryStore()
	}

	srv := httpserver.New(cfg.HTTP, httpserver.Deps{
		Catalog:  cat,
		Profiles: profiles,
		Accounts: store.NewAccounts(db),
		Daily:    daily.NewStore(db),
	})

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
