// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config concentra a configuração lida do ambiente.
type Config struct {
	Port              string
	FirestoreProject  string
	FirestoreDatabase string
	JWTSecret         string
	LogLevel          string
	ImportBatchSize   int
}

// Load lê o .env (se existir) e as variáveis de ambiente. Valores ausentes
// caem nos defaults de desenvolvimento.
func Load() Config {
	// Em produção as variáveis vêm do ambiente; o .env é conveniência local.
	_ = godotenv.Load()

	return Config{
		Port:              getEnv("PORT", "8080"),
		FirestoreProject:  getEnv("FIRESTORE_PROJECT_ID", "importa-hotmart"),
		FirestoreDatabase: getEnv("FIRESTORE_DATABASE_ID", "importa-hotmart"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ImportBatchSize:   getEnvInt("IMPORT_BATCH_SIZE", 50),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
