package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ethanbaker/smartmarket/pkg/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the backing store selected by the configuration
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		if cfg.MySQLDatabase == "" {
			return nil, fmt.Errorf("MYSQL_DATABASE must be set for the mysql driver")
		}
		return OpenMySQL(cfg.MySQLDSN(), logger.Warn)

	case config.DriverSQLite:
		log.Printf("[DATABASE]: Using sqlite store at %s", cfg.SQLitePath)
		return OpenSQLite(cfg.SQLitePath, logger.Warn)
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// OpenMySQL connects to a MySQL database
func OpenMySQL(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// OpenSQLite opens a SQLite database file. SQLite serializes writers, so the
// pool is limited to a single connection.
func OpenSQLite(path string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), gormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Close releases the connection pool behind db
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "[DATABASE]: ", log.LstdFlags), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}
