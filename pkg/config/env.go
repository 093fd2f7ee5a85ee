package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from multiple .env files and returns a
// snapshot of the resulting environment. Later files take precedence; values
// already present in the process environment are never overridden.
func LoadEnv(files ...string) map[string]string {
	for _, file := range files {
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			log.Printf("[CONFIG]: Warning, env file %s not found, skipping", file)
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Printf("[CONFIG]: Warning, could not load %s: %v", file, err)
		}
	}

	environment := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && key != "" {
			environment[key] = value
		}
	}
	return environment
}

// EnvFile returns the env file named by ENV_FILE, defaulting to .env
func EnvFile() string {
	if file := os.Getenv("ENV_FILE"); file != "" {
		return file
	}
	return ".env"
}
