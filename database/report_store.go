// database/report_store.go
package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/jmtz/meteopipe/models"
)

// ErrDuplicateReport marks an insert whose report id already exists in the
// store. The existing row is left untouched; callers skip the item.
var ErrDuplicateReport = errors.New("database: duplicate report id")

const mysqlDuplicateEntry = 1062

// GetOrCreateCity resolves the city id for name, creating the row on first
// sight. The insert relies on the unique key on name plus the
// LAST_INSERT_ID(id) trick, so two concurrent creators of the same new name
// converge on a single row without a read-then-create race.
func GetOrCreateCity(name string) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("%w: connection is not initialized", ErrStoreUnavailable)
	}

	res, err := DB.Exec(`
		INSERT INTO cities (name) VALUES (?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
	`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get or create city %q: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read city id for %q: %w", name, err)
	}
	return id, nil
}

// InsertReport writes the status-code ledger entry and the report row for
// one batch item inside a single transaction. A duplicate item id fails the
// transaction with ErrDuplicateReport and leaves the store unchanged for
// that id, which is what makes re-ingesting a batch idempotent.
func InsertReport(item models.BatchItem, cityID int64) error {
	if DB == nil {
		return fmt.Errorf("%w: connection is not initialized", ErrStoreUnavailable)
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for report %s: %w", item.ID, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO codes (id, code) VALUES (?, ?)`, item.ID, item.Code); err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("code ledger entry for %s: %w", item.ID, ErrDuplicateReport)
		}
		return fmt.Errorf("failed to insert code ledger entry for %s: %w", item.ID, err)
	}

	_, err = tx.Exec(`
		INSERT INTO reports (id, distance, temperature, humidity, updated, city_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.ID, item.Distance, item.Temperature, item.Humidity, item.Updated, cityID)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("report row for %s: %w", item.ID, ErrDuplicateReport)
		}
		return fmt.Errorf("failed to insert report row for %s: %w", item.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report %s: %w", item.ID, err)
	}
	return nil
}

// CountReportsByID returns how many report rows carry the given id.
// With the primary key in place this is always 0 or 1.
func CountReportsByID(id string) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("%w: connection is not initialized", ErrStoreUnavailable)
	}
	var count int
	if err := DB.QueryRow(`SELECT COUNT(*) FROM reports WHERE id = ?`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports for id %s: %w", id, err)
	}
	return count, nil
}

func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
