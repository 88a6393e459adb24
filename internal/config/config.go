package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Port          string
	Environment   string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	JWTTTLHours   int
	CORSOrigin    string
	TextbeltKey   string
}

// Load reads configuration from environment variables. JWT_SECRET is the
// only hard requirement; everything else has a development default.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	ttl, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))
	if err != nil {
		return nil, errors.New("invalid JWT_TTL_HOURS")
	}

	return &Config{
		Port:          getEnv("API_PORT", "8080"),
		Environment:   getEnv("APP_ENV", "development"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "healthcare"),
		JWTSecret:     secret,
		JWTTTLHours:   ttl,
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:3000"),
		TextbeltKey:   os.Getenv("TEXTBELT_API_KEY"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
