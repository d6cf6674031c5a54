// database/connection.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/jmtz/meteopipe/config"
)

var DB *sql.DB

// ErrStoreUnavailable marks whole-store connectivity failures. It is fatal
// for the stage that hit it, unlike per-item errors such as
// ErrDuplicateReport.
var ErrStoreUnavailable = errors.New("database: store unavailable")

// InitDB initializes the database connection pool and verifies connectivity.
func InitDB(cfg config.DatabaseConfig) error {
	var err error
	// DSN: username:password@protocol(address)/dbname?param=value
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("%w: failed to ping database: %v", ErrStoreUnavailable, err)
	}

	log.Println("Database: successfully connected.")
	return nil
}

// CloseDB closes the database connection pool.
// Typically called on application shutdown.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Database: connection closed.")
	}
}

// CheckStore verifies the store is reachable before a stage starts writing
// or aggregating. Callers treat a failure here as fatal for the stage.
func CheckStore() error {
	if DB == nil {
		return fmt.Errorf("%w: connection is not initialized", ErrStoreUnavailable)
	}
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
