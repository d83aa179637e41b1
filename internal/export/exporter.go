package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sabarim/doorstats/internal/stats"
)

// Exporter writes aggregates and events to data files
type Exporter struct {
	log *zap.Logger
}

// NewExporter creates a new exporter
func NewExporter(log *zap.Logger) *Exporter {
	return &Exporter{log: log}
}

// WriteSeriesCSV writes every non-empty series to <dir>/<name>.csv with the
// columns key,label,value and returns the files written.
func (ex *Exporter) WriteSeriesCSV(dir string, series ...stats.Series) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create csv directory: %w", err)
	}

	var written []string
	for _, s := range series {
		if s.Empty() {
			continue
		}
		filename := filepath.Join(dir, s.Name+".csv")
		if err := writeSeriesCSV(filename, s); err != nil {
			return written, err
		}
		written = append(written, filename)
	}
	return written, nil
}

func writeSeriesCSV(filename string, s stats.Series) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"key", "label", "value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range s.Points {
		if err := w.Write([]string{p.Key, p.Label, strconv.FormatFloat(p.Value, 'f', -1, 64)}); err != nil {
			return fmt.Errorf("failed to write data: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	return file.Close()
}

// NewReport builds the report for a run
func NewReport(input string, summary stats.Summary, charts []string, series ...stats.Series) Report {
	report := Report{
		Input:  input,
		Charts: charts,
		Summary: ReportSummary{
			Events:          summary.Events,
			Opens:           summary.Opens,
			Closes:          summary.Closes,
			SkippedRows:     summary.Skipped,
			Days:            summary.Days,
			MeanIntervalS:   summary.MeanInterval,
			MedianIntervalS: summary.MedianInterval,
			Visits:          summary.Visits,
			MeanVisitS:      summary.MeanVisit,
			MedianVisitS:    summary.MedianVisit,
		},
		Series: make([]ReportSeries, 0, len(series)),
	}
	if !summary.First.IsZero() {
		report.Summary.First = summary.First.Format(time.RFC3339)
		report.Summary.Last = summary.Last.Format(time.RFC3339)
	}

	for _, s := range series {
		rs := ReportSeries{Name: s.Name, Title: s.Title, Unit: s.Unit, Points: make([]ReportPoint, len(s.Points))}
		for i, p := range s.Points {
			rs.Points[i] = ReportPoint{Key: p.Key, Label: p.Label, Value: p.Value}
		}
		report.Series = append(report.Series, rs)
	}
	return report
}

// WriteReport writes the report as YAML to path
func (ex *Exporter) WriteReport(path string, report Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	ex.log.Debug("Report written", zap.String("path", path), zap.Int("series", len(report.Series)))
	return file.Close()
}
