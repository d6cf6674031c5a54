// models/report.go
package models

// City is a monitored location. Created lazily the first time a report
// references its name; never updated or deleted after that.
type City struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Fields holds the values extracted from one weather page. Every field is
// independently nullable: a missing or malformed fragment yields nil for
// that field only.
type Fields struct {
	Distance    *string
	Updated     *int64 // epoch seconds, UTC
	Temperature *float64
	Humidity    *float64
}

// Report is one immutable fetch-and-extract outcome for one city.
// The ID is externally assigned ("{run}_{index}") and unique across all time.
type Report struct {
	ID          string   `db:"id"`
	Distance    *string  `db:"distance"`
	Temperature *float64 `db:"temperature"`
	Humidity    *float64 `db:"humidity"`
	Updated     *int64   `db:"updated"`
	CityID      int64    `db:"city_id"`
}
