// config.go
//
// Environment configuration for the server. A .env file in the working
// directory is loaded first (best effort, see main).

package main

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	"github.com/Caliovent/korean-party-functions/internal/httpserver"
)

const devJWTSecret = "dev_secret_change_me"

// Config is the full runtime configuration.
type Config struct {
	Port         string
	DatabasePath string
	CatalogFile  string // empty: embedded catalog
	ProfileStore string // "sqlite" or "memory"
	LogLevel     string
	LogFormat    string // "json" or "console"

	HTTP httpserver.Options
}

// serverEnv holds raw env values.
type serverEnv struct {
	Port           string `env:"PORT"             envDefault:"5175"`
	DatabasePath   string `env:"DATABASE_PATH"    envDefault:"./data/app.db"`
	CatalogFile    string `env:"CATALOG_FILE"`
	ProfileStore   string `env:"PROFILE_STORE"    envDefault:"sqlite"`
	LogLevel       string `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT"       envDefault:"json"`
	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"kp_token"`
	NodeEnv        string `env:"NODE_ENV"`
	ClientOrigin   string `env:"CLIENT_ORIGIN"    envDefault:"http://localhost:5173"`
	DailySalt      string `env:"DAILY_SALT"       envDefault:"korean-party"`
	StartingMana   int64  `env:"STARTING_MANA"    envDefault:"100"`
}

// loadConfig parses the environment. A malformed value is an error rather
// than a silent default.
func loadConfig() (Config, error) {
	var raw serverEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return Config{
		Port:         raw.Port,
		DatabasePath: raw.DatabasePath,
		CatalogFile:  raw.CatalogFile,
		ProfileStore: strings.ToLower(raw.ProfileStore),
		LogLevel:     raw.LogLevel,
		LogFormat:    strings.ToLower(raw.LogFormat),
		HTTP: httpserver.Options{
			JWTSecret:      raw.JWTSecret,
			JWTExpiresDays: raw.JWTExpiresDays,
			CookieName:     raw.CookieName,
			Production:     raw.NodeEnv == "production",
			ClientOrigin:   raw.ClientOrigin,
			DailySalt:      raw.DailySalt,
			StartingMana:   raw.StartingMana,
		},
	}, nil
}

// warnings logs settings that are fine in development but not in production.
func (c Config) warnings() {
	if c.HTTP.JWTSecret == devJWTSecret {
		ev := log.Warn()
		if c.HTTP.Production {
			ev = log.Error()
		}
		ev.Msg("JWT_SECRET is not set; using the development secret")
	}
}
