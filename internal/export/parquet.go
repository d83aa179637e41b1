package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/sabarim/doorstats/internal/events"
	"github.com/sabarim/doorstats/internal/stats"
)

// WriteEventsParquet archives records as parquet, one file per calendar
// month named events_<yyyy>-<mm>.parquet. It returns the files written.
func (ex *Exporter) WriteEventsParquet(dir string, records []events.Record) ([]string, error) {
	if len(records) == 0 {
		ex.log.Debug("No events to archive")
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parquet directory: %w", err)
	}

	// Group records by month to create separate files
	byYearMonth := make(map[string][]events.Record)
	for _, r := range records {
		yearMonth := r.Time.Format("2006-01")
		byYearMonth[yearMonth] = append(byYearMonth[yearMonth], r)
	}

	months := make([]string, 0, len(byYearMonth))
	for yearMonth := range byYearMonth {
		months = append(months, yearMonth)
	}
	sort.Strings(months)

	var written []string
	for _, yearMonth := range months {
		filename := filepath.Join(dir, fmt.Sprintf("events_%s.parquet", yearMonth))
		if err := writeEvents(filename, byYearMonth[yearMonth]); err != nil {
			return written, fmt.Errorf("failed to write parquet file: %w", err)
		}
		written = append(written, filename)
	}

	ex.log.Sugar().Debugf("Archived %d events to %d parquet files in %s", len(records), len(written), dir)
	return written, nil
}

// writeEvents writes one month of events to a parquet file
func writeEvents(filename string, records []events.Record) error {
	fw, err := local.NewLocalFileWriter(filename)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(EventPoint), 1)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_GZIP
	pw.PageSize = 8 * 1024 // 8KB pages

	for _, r := range records {
		point := EventPoint{
			Timestamp: r.Time.Unix(),
			Date:      r.Time.Format("2006-01-02"),
			Kind:      r.Kind.String(),
			Year:      int32(r.Time.Year()),
			Month:     int32(r.Time.Month()),
			Day:       int32(r.Time.Day()),
			Hour:      int32(r.Time.Hour()),
			Weekday:   int32(stats.WeekdayIndex(r.Time)),
		}
		if err := pw.Write(point); err != nil {
			return fmt.Errorf("failed to write parquet data: %w", err)
		}
	}

	// Flush and close the writer
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
