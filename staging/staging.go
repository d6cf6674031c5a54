// staging/staging.go
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmtz/meteopipe/models"
	"github.com/jmtz/meteopipe/scraper"
)

// ErrNoBatch is returned when the staging directory holds no batch to ingest.
var ErrNoBatch = errors.New("staging: no batch available")

// Pack assembles scrape outcomes into a transportable batch. The run id is
// the UTC wall clock of the call and every item id is "{run}_{index}", which
// keeps ids unique across all runs as long as runs are at least a second
// apart.
func Pack(cities, urls []string, outcomes []scraper.Outcome) models.Batch {
	run := time.Now().UTC().Unix()

	items := make([]models.BatchItem, len(outcomes))
	for i, out := range outcomes {
		items[i] = models.BatchItem{
			Query:       urls[i],
			City:        cities[i],
			Code:        out.Code,
			Distance:    out.Fields.Distance,
			Updated:     out.Fields.Updated,
			Temperature: out.Fields.Temperature,
			Humidity:    out.Fields.Humidity,
			Run:         run,
			ID:          fmt.Sprintf("%d_%d", run, i),
		}
	}

	return models.Batch{Run: run, Items: items}
}

// Write persists the batch as {run}.json in dir. The run id in the filename
// is the producer-assigned sequence LoadLatest orders by.
func Write(dir string, batch models.Batch) error {
	data, err := json.Marshal(batch.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal batch %d: %w", batch.Run, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.json", batch.Run))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write batch file %s: %w", path, err)
	}

	log.Printf("Staging: wrote batch %d with %d items to %s", batch.Run, len(batch.Items), path)
	return nil
}

// LoadLatest returns the staged batch with the highest run id. Selection is
// by the run number encoded in the filename, never by filesystem timestamps,
// so it is stable under clock skew and copied files. Files that are not
// {run}.json are ignored.
func LoadLatest(dir string) (models.Batch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return models.Batch{}, fmt.Errorf("failed to read staging dir %s: %w", dir, err)
	}

	var latestRun int64 = -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		run, ok := runFromFilename(entry.Name())
		if !ok {
			continue
		}
		if run > latestRun {
			latestRun = run
		}
	}
	if latestRun < 0 {
		return models.Batch{}, ErrNoBatch
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.json", latestRun))
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Batch{}, fmt.Errorf("failed to read batch file %s: %w", path, err)
	}

	var items []models.BatchItem
	if err := json.Unmarshal(data, &items); err != nil {
		return models.Batch{}, fmt.Errorf("failed to unmarshal batch file %s: %w", path, err)
	}

	return models.Batch{Run: latestRun, Items: items}, nil
}

func runFromFilename(name string) (int64, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return 0, false
	}
	run, err := strconv.ParseInt(base, 10, 64)
	if err != nil || run < 0 {
		return 0, false
	}
	return run, true
}
