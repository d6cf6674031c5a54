//go:build integration
// +build integration

package services

import (
	"errors"
	"os"
	"testing"

	"github.com/jmtz/meteopipe/config"
	"github.com/jmtz/meteopipe/database"
	"github.com/jmtz/meteopipe/models"
	"github.com/jmtz/meteopipe/staging"
)

// setupPipeline points the pipeline at empty temp directories and an empty
// test database. Skipped when METEO_TEST_DB_NAME is not set.
func setupPipeline(t *testing.T) {
	t.Helper()

	dbName := os.Getenv("METEO_TEST_DB_NAME")
	if dbName == "" {
		t.Skip("METEO_TEST_DB_NAME not set; skipping pipeline integration tests")
	}

	if database.DB == nil {
		cfg := config.DatabaseConfig{
			Host:     envDefault("METEO_TEST_DB_HOST", "127.0.0.1"),
			Port:     envDefault("METEO_TEST_DB_PORT", "3306"),
			User:     envDefault("METEO_TEST_DB_USER", "root"),
			Password: os.Getenv("METEO_TEST_DB_PASSWORD"),
			DBName:   dbName,
		}
		if err := database.InitDB(cfg); err != nil {
			t.Skipf("test database not reachable: %v", err)
		}
		if err := database.EnsureSchema(); err != nil {
			t.Fatalf("EnsureSchema() error = %v", err)
		}
	}
	for _, stmt := range []string{"DELETE FROM reports", "DELETE FROM codes", "DELETE FROM cities"} {
		if _, err := database.DB.Exec(stmt); err != nil {
			t.Fatalf("failed to reset table: %v", err)
		}
	}

	config.AppConfig.Paths = config.PathsConfig{
		StagingDir: t.TempDir(),
		ParquetDir: t.TempDir(),
		CsvDir:     t.TempDir(),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func countDirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestIngestTwice_SecondPassAppliesNothing(t *testing.T) {
	setupPipeline(t)

	temp, humid := 15.0, 40.0
	updated := int64(1000)
	batch := models.Batch{
		Run: 1,
		Items: []models.BatchItem{
			{Query: "http://x.test/x", City: "x", Code: 200,
				Temperature: &temp, Humidity: &humid, Updated: &updated,
				Run: 1, ID: "1_0"},
		},
	}
	if err := staging.Write(config.AppConfig.Paths.StagingDir, batch); err != nil {
		t.Fatalf("staging.Write() error = %v", err)
	}

	applied, err := IngestLatest()
	if err != nil {
		t.Fatalf("IngestLatest() error = %v", err)
	}
	if applied != 1 {
		t.Fatalf("first ingest applied = %d, want 1", applied)
	}
	if err := ExportIfChanged(applied); err != nil {
		t.Fatalf("ExportIfChanged() error = %v", err)
	}
	if n := countDirEntries(t, config.AppConfig.Paths.CsvDir); n != 1 {
		t.Errorf("csv exports after first ingest = %d, want 1", n)
	}
	if n := countDirEntries(t, config.AppConfig.Paths.ParquetDir); n != 1 {
		t.Errorf("parquet exports after first ingest = %d, want 1", n)
	}

	// Re-ingesting the identical batch must change nothing and trigger no
	// new export.
	applied, err = IngestLatest()
	if err != nil {
		t.Fatalf("IngestLatest() second call error = %v", err)
	}
	if applied != 0 {
		t.Errorf("second ingest applied = %d, want 0", applied)
	}
	if err := ExportIfChanged(applied); err != nil {
		t.Fatalf("ExportIfChanged() error = %v", err)
	}
	if n := countDirEntries(t, config.AppConfig.Paths.CsvDir); n != 1 {
		t.Errorf("csv exports after second ingest = %d, want still 1", n)
	}
	if n := countDirEntries(t, config.AppConfig.Paths.ParquetDir); n != 1 {
		t.Errorf("parquet exports after second ingest = %d, want still 1", n)
	}

	count, err := database.CountReportsByID("1_0")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("report count for 1_0 = %d, want exactly 1", count)
	}
}

func TestIngestLatest_PartialFailureStillApplies(t *testing.T) {
	setupPipeline(t)

	temp := 20.0
	first := models.Batch{
		Run: 5,
		Items: []models.BatchItem{
			{City: "merida", Code: 200, Temperature: &temp, Run: 5, ID: "5_0"},
		},
	}
	if err := staging.Write(config.AppConfig.Paths.StagingDir, first); err != nil {
		t.Fatal(err)
	}
	if _, err := IngestLatest(); err != nil {
		t.Fatalf("IngestLatest() error = %v", err)
	}

	// A later batch colliding on one id still applies its other items.
	second := models.Batch{
		Run: 6,
		Items: []models.BatchItem{
			{City: "merida", Code: 200, Temperature: &temp, Run: 5, ID: "5_0"},
			{City: "monterrey", Code: 500, Run: 6, ID: "6_1"},
		},
	}
	if err := staging.Write(config.AppConfig.Paths.StagingDir, second); err != nil {
		t.Fatal(err)
	}

	applied, err := IngestLatest()
	if err != nil {
		t.Fatalf("IngestLatest() error = %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1 (duplicate skipped, sibling applied)", applied)
	}

	count, err := database.CountReportsByID("6_1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("report count for 6_1 = %d, want 1", count)
	}
}

func TestIngestLatest_NoBatchIsFatal(t *testing.T) {
	setupPipeline(t)

	_, err := IngestLatest()
	if err == nil {
		t.Fatal("IngestLatest() error = nil, want failure for empty staging dir")
	}
	if !errors.Is(err, ErrIngestStage) {
		t.Errorf("error = %v, want ErrIngestStage in the chain", err)
	}
	if !errors.Is(err, staging.ErrNoBatch) {
		t.Errorf("error = %v, want staging.ErrNoBatch in the chain", err)
	}
}
