package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

// Supported database drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config is the typed configuration of every smartmarket binary
type Config struct {
	API      APIConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Audit    AuditConfig
	Client   ClientConfig
}

// APIConfig configures the HTTP server
type APIConfig struct {
	Port               string   `env:"API_PORT" envDefault:"8080"`
	Key                string   `env:"API_KEY"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// ClientConfig points the command line client at a running server
type ClientConfig struct {
	URL string `env:"API_URL" envDefault:"http://localhost:8080"`
	Key string `env:"API_KEY"`
}

// DatabaseConfig selects and configures the relational backing store
type DatabaseConfig struct {
	Driver        string `env:"DATABASE_DRIVER" envDefault:"mysql"`
	MySQLUser     string `env:"MYSQL_USER"`
	MySQLPassword string `env:"MYSQL_PASSWORD"`
	MySQLHost     string `env:"MYSQL_HOST" envDefault:"localhost"`
	MySQLPort     string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDatabase string `env:"MYSQL_DATABASE"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"smartmarket.db"`

	// Dialect names the SQL dialect generated queries must target. Empty
	// means it follows the driver.
	Dialect string `env:"SQL_DIALECT"`
}

// LLMConfig configures the text-understanding collaborator
type LLMConfig struct {
	BaseURL             string        `env:"LLM_BASE_URL" envDefault:"https://router.huggingface.co/v1"`
	APIKey              string        `env:"LLM_API_KEY"`
	Model               string        `env:"LLM_MODEL" envDefault:"meta-llama/Llama-3.1-8B-Instruct"`
	Timeout             time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	ClassifierURL       string        `env:"CLASSIFIER_URL"`
	ClassifierThreshold float64       `env:"CLASSIFIER_THRESHOLD" envDefault:"0.5"`
}

// AuditConfig configures the scheduled replay audit
type AuditConfig struct {
	Schedule string `env:"AUDIT_SCHEDULE" envDefault:"@every 1h"`
	Repair   bool   `env:"AUDIT_REPAIR" envDefault:"false"`
}

// Load reads the given env files into the process environment and parses
// the result into a Config
func Load(files ...string) (*Config, error) {
	return Parse(LoadEnv(files...))
}

// Parse builds a Config from an explicit environment map
func Parse(environment map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.LLM.ClassifierThreshold < 0 || cfg.LLM.ClassifierThreshold > 1 {
		return nil, fmt.Errorf("CLASSIFIER_THRESHOLD must be between 0 and 1, got %v", cfg.LLM.ClassifierThreshold)
	}

	return &cfg, nil
}

// SQLDialect returns the dialect generated queries should be written in
func (c *DatabaseConfig) SQLDialect() string {
	if c.Dialect != "" {
		return c.Dialect
	}
	if c.Driver == DriverSQLite {
		return "SQLite"
	}
	return "MySQL"
}

// MySQLDSN builds the MySQL connection string
func (c *DatabaseConfig) MySQLDSN() string {
	dbConfig := mysql.Config{
		User:                 c.MySQLUser,
		Passwd:               c.MySQLPassword,
		Net:                  "tcp",
		Addr:                 net.JoinHostPort(c.MySQLHost, c.MySQLPort),
		DBName:               c.MySQLDatabase,
		ParseTime:            true,
		AllowNativePasswords: true,
	}
	return dbConfig.FormatDSN()
}
