package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/sabarim/doorstats/internal/charts"
	"github.com/sabarim/doorstats/internal/config"
	"github.com/sabarim/doorstats/internal/events"
	"github.com/sabarim/doorstats/internal/export"
	"github.com/sabarim/doorstats/internal/stats"
)

// Pipeline runs load, extract, render and export over one door log
type Pipeline struct {
	config    *config.Config
	log       *zap.Logger
	reader    *events.Reader
	presenter *charts.Presenter
	exporter  *export.Exporter
}

// Result describes a completed run
type Result struct {
	Load    *events.LoadResult
	Summary stats.Summary
	Charts  []string
	Exports []string
}

// New creates a pipeline for the given configuration
func New(cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	presenter, err := charts.New(charts.Config{
		OutputDir:              cfg.Charts.OutputDir,
		UseAdvancedTypesetting: cfg.Charts.AdvancedTypesetting,
		Format:                 cfg.Charts.Format,
		Width:                  vg.Length(cfg.Charts.WidthIn) * vg.Inch,
		Height:                 vg.Length(cfg.Charts.HeightIn) * vg.Inch,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize presenter: %w", err)
	}

	return &Pipeline{
		config:    cfg,
		log:       log,
		reader:    events.NewReader(cfg.DelimiterRune()),
		presenter: presenter,
		exporter:  export.NewExporter(log),
	}, nil
}

// Run executes the pipeline. Only a missing or entirely unparseable input
// is fatal; malformed rows are skipped and reported.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	loaded, err := p.reader.Load(p.config.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", p.config.Input.Path, err)
	}
	p.reportSkipped(loaded)

	result := &Result{Load: loaded}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	extractor := stats.NewExtractor(loaded.Records)
	input := p.extract(extractor)
	result.Summary = extractor.Summarize(loaded.Skipped)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.Charts, err = p.presenter.RenderAll(input)
	if err != nil {
		return result, fmt.Errorf("failed to render charts: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	series := []stats.Series{
		input.CountByDay,
		input.CountByWeekday,
		input.CountByMonth,
		input.CountByHour,
		input.OpennessByHour,
		input.OpennessByWeekday,
	}
	series = append(series, input.Semesters...)
	if err := p.export(result, loaded, series); err != nil {
		return result, err
	}

	p.log.Debug("Door statistics completed",
		zap.Int("events", len(loaded.Records)),
		zap.Int("charts", len(result.Charts)),
		zap.Int("exports", len(result.Exports)))
	return result, nil
}

func (p *Pipeline) extract(e *stats.Extractor) charts.Input {
	st := p.config.Stats

	visits := stats.NewHistogram(e.VisitDurations().Values, st.VisitMin.Seconds(), st.VisitMax.Seconds(), st.VisitBins)
	var fit *stats.ExpFit
	if f, ok := stats.FitExponential(visits, st.FitFrom, st.FitTo); ok {
		fit = &f
	} else if visits.Total() > 0 {
		p.log.Debug("Not enough visits to fit an exponential", zap.Float64("visits", visits.Total()))
	}

	intervals := stats.NewHistogram(e.IntervalsBetweenEvents().Values, 0, st.VisitMax.Seconds(), st.VisitBins)
	if intervals.Dropped > 0 {
		p.log.Debug("Intervals outside the histogram range", zap.Int("dropped", intervals.Dropped))
	}

	return charts.Input{
		CountByDay:        e.CountByDay(),
		CountByWeekday:    e.CountByWeekday(),
		CountByMonth:      e.CountByMonth(),
		CountByHour:       e.CountByHour(),
		Openness:          e.Openness(st.TrendPeriod),
		OpennessByHour:    e.OpennessByHour(st.SamplePeriod),
		OpennessByWeekday: e.OpennessByWeekday(st.SamplePeriod),
		Semesters:         e.OpennessByWeekdayBySemester(st.SamplePeriod),
		Intervals:         intervals,
		Visits:            visits,
		VisitFit:          fit,
	}
}

func (p *Pipeline) export(result *Result, loaded *events.LoadResult, series []stats.Series) error {
	ex := p.config.Export

	if ex.CSVEnabled {
		written, err := p.exporter.WriteSeriesCSV(p.config.SeriesCSVDir(), series...)
		result.Exports = append(result.Exports, written...)
		if err != nil {
			return fmt.Errorf("failed to export series: %w", err)
		}
	}

	if ex.ParquetEnabled {
		written, err := p.exporter.WriteEventsParquet(ex.ParquetDir, loaded.Records)
		result.Exports = append(result.Exports, written...)
		if err != nil {
			return fmt.Errorf("failed to archive events: %w", err)
		}
	}

	if ex.ReportPath != "" {
		report := export.NewReport(p.config.Input.Path, result.Summary, result.Charts, series...)
		if err := p.exporter.WriteReport(ex.ReportPath, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		result.Exports = append(result.Exports, ex.ReportPath)
	}
	return nil
}

// reportSkipped logs one summary line for malformed rows
func (p *Pipeline) reportSkipped(loaded *events.LoadResult) {
	if loaded.Skipped == 0 {
		return
	}
	p.log.Warn("Skipped malformed rows",
		zap.String("input", p.config.Input.Path),
		zap.Int("skipped", loaded.Skipped),
		zap.Int("rows", loaded.Rows))
	for _, problem := range loaded.Problems {
		p.log.Debug("Malformed row", zap.Int("line", problem.Line), zap.String("reason", problem.Reason))
	}
}
