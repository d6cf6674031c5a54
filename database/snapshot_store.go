// database/snapshot_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/jmtz/meteopipe/models"
)

// ComputeSnapshot recomputes the per-city summary from the store's current
// contents, one row per city in city id order. Aggregates only consider
// non-NULL samples, so a city with no usable reports surfaces NULL ("no
// data"), never zero. Most-recent values come from the report carrying the
// maximum non-NULL updated timestamp; ties resolve to the lowest report id,
// which keeps the choice deterministic within one computation.
func ComputeSnapshot() ([]models.SnapshotRow, error) {
	if err := CheckStore(); err != nil {
		return nil, err
	}

	rows, err := DB.Query(`SELECT id, name FROM cities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}
		cities = append(cities, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating city rows: %w", err)
	}

	snapshot := make([]models.SnapshotRow, 0, len(cities))
	for _, city := range cities {
		row, err := snapshotRowForCity(city)
		if err != nil {
			return nil, err
		}
		snapshot = append(snapshot, row)
	}

	log.Printf("Database: computed snapshot for %d cities.", len(snapshot))
	return snapshot, nil
}

func snapshotRowForCity(city models.City) (models.SnapshotRow, error) {
	row := models.SnapshotRow{City: city.Name}

	var maxTemp, minTemp, avgTemp, maxHumid, minHumid, avgHumid sql.NullFloat64
	var updated sql.NullInt64

	err := DB.QueryRow(`
		SELECT MAX(temperature), MIN(temperature), AVG(temperature),
		       MAX(humidity), MIN(humidity), AVG(humidity),
		       MAX(updated)
		FROM reports
		WHERE city_id = ?
	`, city.ID).Scan(&maxTemp, &minTemp, &avgTemp, &maxHumid, &minHumid, &avgHumid, &updated)
	if err != nil {
		return row, fmt.Errorf("failed to aggregate reports for city %q: %w", city.Name, err)
	}

	row.MaxTemp = nullFloat(maxTemp)
	row.MinTemp = nullFloat(minTemp)
	row.AvgTemp = nullFloat(avgTemp)
	row.MaxHumid = nullFloat(maxHumid)
	row.MinHumid = nullFloat(minHumid)
	row.AvgHumid = nullFloat(avgHumid)

	if !updated.Valid {
		return row, nil
	}
	ts := updated.Int64
	row.Updated = &ts

	var currTemp, currHumid sql.NullFloat64
	err = DB.QueryRow(`
		SELECT temperature, humidity
		FROM reports
		WHERE city_id = ? AND updated = ?
		ORDER BY id
		LIMIT 1
	`, city.ID, ts).Scan(&currTemp, &currHumid)
	if err != nil {
		return row, fmt.Errorf("failed to read most recent report for city %q: %w", city.Name, err)
	}
	row.CurrTemp = nullFloat(currTemp)
	row.CurrHumid = nullFloat(currHumid)

	return row, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
