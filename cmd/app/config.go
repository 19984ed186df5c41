package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type config struct {
	Host          string
	Port          string
	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string
	PeerTimeout   time.Duration
	PeerSocks5    string
	SeedFile      string
	Tracing       bool
	LogLevel      string
}

// loadConfig reads .env when present, then the process environment.
func loadConfig() config {
	_ = godotenv.Load()

	cfg := config{
		Host:          getEnv("SERVER_HOST", "0.0.0.0"),
		Port:          getEnv("SERVER_PORT", getEnv("PORT", "8080")),
		StoreDriver:   getEnv("STORE_DRIVER", ""),
		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "sync-module-db"),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/proxies.db"),
		PeerTimeout:   getDuration("PEER_TIMEOUT", 10*time.Second),
		PeerSocks5:    getEnv("PEER_SOCKS5", ""),
		SeedFile:      getEnv("SEED_FILE", ""),
		Tracing:       getBool("TRACING", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = "memory"
		if cfg.MongoURI != "" {
			cfg.StoreDriver = "mongo"
		}
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d >= 0 {
		return d
	}
	return def
}

func getBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}
