// export/exporter.go
package export

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/jmtz/meteopipe/models"
)

// nullPartition is the directory name for rows whose updated value is NULL,
// matching the Hive convention for a null partition key.
const nullPartition = "__HIVE_DEFAULT_PARTITION__"

// WriteSnapshot writes the snapshot twice: a parquet artifact partitioned by
// the updated column under parquetDir, and a flat CSV of the identical rows
// under csvDir. Both filenames derive from the export wall clock (UTC epoch
// seconds) so successive runs never collide. An empty snapshot writes
// nothing. Any write error propagates to the caller, which owns the retry
// decision.
func WriteSnapshot(parquetDir, csvDir string, rows []models.SnapshotRow) error {
	if len(rows) == 0 {
		log.Println("Export: snapshot is empty, nothing to write.")
		return nil
	}

	ts := time.Now().UTC().Unix()

	if err := writeParquet(filepath.Join(parquetDir, fmt.Sprintf("%d.parquet", ts)), rows); err != nil {
		return fmt.Errorf("export: parquet artifact failed: %w", err)
	}
	if err := writeCsv(filepath.Join(csvDir, fmt.Sprintf("%d.csv", ts)), rows); err != nil {
		return fmt.Errorf("export: csv artifact failed: %w", err)
	}

	log.Printf("Export: wrote snapshot of %d rows (run %d).", len(rows), ts)
	return nil
}

// writeParquet lays the snapshot out hive-style: one subdirectory per
// distinct updated value, one part file per partition. Partitions are
// staged under a temp root and renamed into place only once all of them
// landed, so a mid-write failure never leaves a partially populated
// artifact under the final name for a reader to mistake as complete.
func writeParquet(root string, rows []models.SnapshotRow) error {
	keys, partitions := partitionByUpdated(rows)

	tmpRoot := root + ".tmp"
	if err := os.MkdirAll(tmpRoot, 0755); err != nil {
		return fmt.Errorf("failed to create staging root %s: %w", tmpRoot, err)
	}

	for _, key := range keys {
		dir := filepath.Join(tmpRoot, "updated="+key)
		if err := os.MkdirAll(dir, 0755); err != nil {
			os.RemoveAll(tmpRoot)
			return fmt.Errorf("failed to create partition dir %s: %w", dir, err)
		}
		if err := writeParquetPart(filepath.Join(dir, "part-0.parquet"), partitions[key]); err != nil {
			os.RemoveAll(tmpRoot)
			return err
		}
	}

	if err := os.Rename(tmpRoot, root); err != nil {
		os.RemoveAll(tmpRoot)
		return fmt.Errorf("failed to finalize parquet artifact %s: %w", root, err)
	}
	return nil
}

func writeParquetPart(path string, rows []models.SnapshotRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file %s: %w", path, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(models.SnapshotRow), 2)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create parquet writer for %s: %w", path, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write parquet row to %s: %w", path, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finalize parquet file %s: %w", path, err)
	}
	return fw.Close()
}

func writeCsv(path string, rows []models.SnapshotRow) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot CSV: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file %s: %w", path, err)
	}
	return nil
}

// partitionByUpdated groups rows by their updated value, preserving row
// order inside each partition. Keys come back sorted so partition output
// order is stable run to run.
func partitionByUpdated(rows []models.SnapshotRow) ([]string, map[string][]models.SnapshotRow) {
	partitions := make(map[string][]models.SnapshotRow)
	for _, row := range rows {
		key := nullPartition
		if row.Updated != nil {
			key = fmt.Sprintf("%d", *row.Updated)
		}
		partitions[key] = append(partitions[key], row)
	}

	keys := make([]string, 0, len(partitions))
	for key := range partitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, partitions
}
