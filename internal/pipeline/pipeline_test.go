package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sabarim/doorstats/internal/config"
	"github.com/sabarim/doorstats/internal/events"
)

const doorLog = `timestamp,kind
2014-11-01 08:00:00,open
2014-11-01 08:20:00,close
not a timestamp,open
2014-11-01 18:00:00,open
2014-11-01 18:45:00,close
2014-11-02 08:00:00,open
2014-11-02 09:30:00,close
2014-12-01 07:50:00,open
2014-12-01 08:05:00,close
`

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input.Path = filepath.Join(dir, "door.csv")
	cfg.Charts.OutputDir = filepath.Join(dir, "charts")
	cfg.Charts.Format = "svg"
	cfg.Export.CSVEnabled = true
	cfg.Export.CSVDir = filepath.Join(dir, "csv")
	cfg.Export.ParquetEnabled = true
	cfg.Export.ParquetDir = filepath.Join(dir, "parquet")
	cfg.Export.ReportPath = filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(cfg.Input.Path, []byte(input), 0o644))
	return &cfg
}

func run(t *testing.T, cfg *config.Config) (*Result, error) {
	t.Helper()
	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	return p.Run(context.Background())
}

func TestRun_SkipsMalformedRowsAndRendersCharts(t *testing.T) {
	cfg := testConfig(t, doorLog)

	result, err := run(t, cfg)
	require.NoError(t, err)

	assert.Len(t, result.Load.Records, 8)
	assert.Equal(t, 1, result.Load.Skipped)
	assert.Equal(t, 1, result.Summary.Skipped)
	assert.Equal(t, 4, result.Summary.Visits)

	require.NotEmpty(t, result.Charts)
	assert.Contains(t, result.Charts, filepath.Join(cfg.Charts.OutputDir, "count_by_day.svg"))
	assert.Contains(t, result.Charts, filepath.Join(cfg.Charts.OutputDir, "count_by_weekday.svg"))
	assert.Contains(t, result.Charts, filepath.Join(cfg.Charts.OutputDir, "visit_durations.svg"))
	for _, path := range result.Charts {
		assert.FileExists(t, path)
	}

	assert.Contains(t, result.Exports, filepath.Join(cfg.Export.CSVDir, "count_by_day.csv"))
	assert.Contains(t, result.Exports, filepath.Join(cfg.Export.ParquetDir, "events_2014-11.parquet"))
	assert.Contains(t, result.Exports, filepath.Join(cfg.Export.ParquetDir, "events_2014-12.parquet"))
	assert.Contains(t, result.Exports, cfg.Export.ReportPath)

	report, err := os.ReadFile(cfg.Export.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "skipped_rows: 1")
}

func TestRun_SeriesCSVFollowsChartDir(t *testing.T) {
	cfg := testConfig(t, doorLog)
	cfg.Export.CSVDir = ""
	cfg.Export.ParquetEnabled = false
	cfg.Export.ReportPath = ""

	result, err := run(t, cfg)
	require.NoError(t, err)

	assert.Contains(t, result.Exports, filepath.Join(cfg.Charts.OutputDir, "count_by_day.csv"))
	assert.FileExists(t, filepath.Join(cfg.Charts.OutputDir, "count_by_weekday.csv"))
}

func TestRun_Idempotent(t *testing.T) {
	cfg := testConfig(t, doorLog)

	first, err := run(t, cfg)
	require.NoError(t, err)
	second, err := run(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Load, second.Load)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Charts, second.Charts)
}

func TestRun_EmptyInput(t *testing.T) {
	cfg := testConfig(t, "")

	result, err := run(t, cfg)
	require.NoError(t, err)

	assert.Empty(t, result.Load.Records)
	assert.Empty(t, result.Charts)
	assert.Equal(t, []string{cfg.Export.ReportPath}, result.Exports)
}

func TestRun_MissingInput(t *testing.T) {
	cfg := testConfig(t, doorLog)
	require.NoError(t, os.Remove(cfg.Input.Path))

	_, err := run(t, cfg)
	assert.True(t, errors.Is(err, events.ErrMissingInput))
}

func TestRun_Unparseable(t *testing.T) {
	cfg := testConfig(t, strings.Repeat("garbage,row\n", 3))

	_, err := run(t, cfg)
	assert.True(t, errors.Is(err, events.ErrNoUsableRows))
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t, doorLog)
	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, result)
	assert.Empty(t, result.Charts)
}
