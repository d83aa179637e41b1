package export

// EventPoint is one door event in the parquet archive
type EventPoint struct {
	Timestamp int64  `parquet:"name=timestamp, type=INT64, encoding=DELTA_BINARY_PACKED"`
	Date      string `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Kind      string `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Year      int32  `parquet:"name=year, type=INT32, encoding=PLAIN_DICTIONARY"`
	Month     int32  `parquet:"name=month, type=INT32, encoding=PLAIN_DICTIONARY"`
	Day       int32  `parquet:"name=day, type=INT32, encoding=PLAIN_DICTIONARY"`
	Hour      int32  `parquet:"name=hour, type=INT32, encoding=PLAIN_DICTIONARY"`
	Weekday   int32  `parquet:"name=weekday, type=INT32, encoding=PLAIN_DICTIONARY"`
}

// Report is the YAML summary written next to the charts
type Report struct {
	Input   string         `yaml:"input"`
	Summary ReportSummary  `yaml:"summary"`
	Charts  []string       `yaml:"charts,omitempty"`
	Series  []ReportSeries `yaml:"series"`
}

// ReportSummary holds the headline numbers of a run
type ReportSummary struct {
	Events          int     `yaml:"events"`
	Opens           int     `yaml:"opens"`
	Closes          int     `yaml:"closes"`
	SkippedRows     int     `yaml:"skipped_rows"`
	First           string  `yaml:"first,omitempty"`
	Last            string  `yaml:"last,omitempty"`
	Days            int     `yaml:"days"`
	MeanIntervalS   float64 `yaml:"mean_interval_s"`
	MedianIntervalS float64 `yaml:"median_interval_s"`
	Visits          int     `yaml:"visits"`
	MeanVisitS      float64 `yaml:"mean_visit_s"`
	MedianVisitS    float64 `yaml:"median_visit_s"`
}

// ReportSeries is one aggregate series in the report
type ReportSeries struct {
	Name   string        `yaml:"name"`
	Title  string        `yaml:"title"`
	Unit   string        `yaml:"unit"`
	Points []ReportPoint `yaml:"points"`
}

// ReportPoint is one bucket of a report series
type ReportPoint struct {
	Key   string  `yaml:"key"`
	Label string  `yaml:"label"`
	Value float64 `yaml:"value"`
}
