// services/pipeline_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/jmtz/meteopipe/config"
	"github.com/jmtz/meteopipe/database"
	"github.com/jmtz/meteopipe/export"
	"github.com/jmtz/meteopipe/models"
	"github.com/jmtz/meteopipe/scraper"
	"github.com/jmtz/meteopipe/staging"
)

// Stage-level failure signals. Each pipeline stage wraps its fatal errors
// with one of these so a driver can tell which stage to retry.
var (
	ErrScrapeStage = errors.New("service: scrape stage failed")
	ErrIngestStage = errors.New("service: ingest stage failed")
	ErrExportStage = errors.New("service: export stage failed")
)

// RunScrape fetches every configured city page, packs the outcomes into a
// batch and stages it. Individual fetch or extraction failures are recorded
// inside the batch, not raised; only staging I/O is fatal here.
func RunScrape(fetcher scraper.Fetcher) (models.Batch, error) {
	cities := config.AppConfig.Scrape.Cities
	urls := config.AppConfig.Scrape.TargetURLs()

	log.Printf("Service: scraping %d targets...", len(urls))
	outcomes := scraper.New(fetcher).Scrape(urls)

	batch := staging.Pack(cities, urls, outcomes)
	if err := staging.Write(config.AppConfig.Paths.StagingDir, batch); err != nil {
		return models.Batch{}, fmt.Errorf("%w: %w", ErrScrapeStage, err)
	}
	return batch, nil
}

// IngestLatest loads the most recently staged batch and applies its items to
// the store. Items fail independently: a duplicate id or malformed row is
// logged with its id and skipped while the rest of the batch proceeds. A
// missing or unreadable batch, and an unreachable store, are fatal for the
// whole call. The count of newly applied items is returned.
func IngestLatest() (int, error) {
	if err := database.CheckStore(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIngestStage, err)
	}

	batch, err := staging.LoadLatest(config.AppConfig.Paths.StagingDir)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIngestStage, err)
	}
	log.Printf("Service: ingesting batch %d with %d items...", batch.Run, len(batch.Items))

	applied := 0
	for _, item := range batch.Items {
		if err := ingestItem(item); err != nil {
			if errors.Is(err, database.ErrStoreUnavailable) {
				return applied, fmt.Errorf("%w: %w", ErrIngestStage, err)
			}
			if errors.Is(err, database.ErrDuplicateReport) {
				log.Printf("Service: report %s already ingested, skipping.", item.ID)
			} else {
				log.Printf("ERROR Service: report %s for city %q not applied: %v", item.ID, item.City, err)
			}
			continue
		}
		applied++
	}

	log.Printf("Service: batch %d done, %d of %d items applied.", batch.Run, applied, len(batch.Items))
	return applied, nil
}

func ingestItem(item models.BatchItem) error {
	cityID, err := database.GetOrCreateCity(item.City)
	if err != nil {
		return err
	}
	return database.InsertReport(item, cityID)
}

// ExportIfChanged recomputes the snapshot and writes both export artifacts,
// but only when the preceding ingestion actually applied something. Rows
// already committed to the store stay committed even when the export fails.
func ExportIfChanged(applied int) error {
	if applied == 0 {
		log.Println("Service: no items applied this cycle, skipping export.")
		return nil
	}

	snapshot, err := database.ComputeSnapshot()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportStage, err)
	}
	if err := export.WriteSnapshot(config.AppConfig.Paths.ParquetDir, config.AppConfig.Paths.CsvDir, snapshot); err != nil {
		return fmt.Errorf("%w: %w", ErrExportStage, err)
	}
	return nil
}

// RunCycle drives one full pipeline pass: scrape, stage, ingest, export.
// Failures keep their stage-specific signal so the periodic driver can log
// and retry per stage.
func RunCycle(fetcher scraper.Fetcher) error {
	if _, err := RunScrape(fetcher); err != nil {
		return err
	}

	applied, err := IngestLatest()
	if err != nil {
		return err
	}

	return ExportIfChanged(applied)
}
