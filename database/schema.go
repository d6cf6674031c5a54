// database/schema.go
package database

import (
	"fmt"
	"log"
)

// The store is three append-only tables: cities (natural key = name),
// codes (status-code ledger keyed by report id), and reports. Report ids
// arrive externally assigned and must stay unique across all time, hence
// the primary keys on codes.id and reports.id.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS cities (
		id   BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_cities_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS codes (
		id   VARCHAR(64) PRIMARY KEY,
		code INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id          VARCHAR(64) PRIMARY KEY,
		distance    VARCHAR(255) NULL,
		temperature DOUBLE NULL,
		humidity    DOUBLE NULL,
		updated     BIGINT NULL,
		city_id     BIGINT NOT NULL,
		CONSTRAINT fk_reports_city FOREIGN KEY (city_id) REFERENCES cities (id)
	)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("%w: connection is not initialized", ErrStoreUnavailable)
	}
	for _, stmt := range schemaStatements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	log.Println("Database: schema ensured.")
	return nil
}
