// models/snapshot.go
package models

// SnapshotRow is the derived per-city summary computed from all of a city's
// reports at export time. It is recomputed wholly on each export and not
// persisted outside the export artifacts. Nil means "no data", never zero.
// Tags cover both export encodings: csvutil for the flat CSV and
// parquet-go for the partitioned parquet artifact.
type SnapshotRow struct {
	City      string   `csv:"city" parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8"`
	MaxTemp   *float64 `csv:"max_temp" parquet:"name=max_temp, type=DOUBLE, repetitiontype=OPTIONAL"`
	MinTemp   *float64 `csv:"min_temp" parquet:"name=min_temp, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgTemp   *float64 `csv:"avg_temp" parquet:"name=avg_temp, type=DOUBLE, repetitiontype=OPTIONAL"`
	MaxHumid  *float64 `csv:"max_humid" parquet:"name=max_humid, type=DOUBLE, repetitiontype=OPTIONAL"`
	MinHumid  *float64 `csv:"min_humid" parquet:"name=min_humid, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgHumid  *float64 `csv:"avg_humid" parquet:"name=avg_humid, type=DOUBLE, repetitiontype=OPTIONAL"`
	CurrTemp  *float64 `csv:"curr_temp" parquet:"name=curr_temp, type=DOUBLE, repetitiontype=OPTIONAL"`
	CurrHumid *float64 `csv:"curr_humid" parquet:"name=curr_humid, type=DOUBLE, repetitiontype=OPTIONAL"`
	Updated   *int64   `csv:"updated" parquet:"name=updated, type=INT64, repetitiontype=OPTIONAL"`
}
