// models/batch.go
package models

// BatchItem is the staging transport payload for one fetch target. The JSON
// field names are the wire contract between the batch writer and the ingestor.
type BatchItem struct {
	Query       string   `json:"query"`
	City        string   `json:"city"`
	Code        int      `json:"code"`
	Distance    *string  `json:"distance"`
	Updated     *int64   `json:"update"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Run         int64    `json:"run"`
	ID          string   `json:"id"`
}

// Batch is the ordered set of items produced by one scraper run. All items
// share the run timestamp that also names the staged file.
type Batch struct {
	Run   int64
	Items []BatchItem
}
