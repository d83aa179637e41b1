package charts

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sabarim/doorstats/internal/stats"
)

// maxNominal is the largest chronological series drawn as labelled bars;
// longer ones are drawn on a time axis.
const maxNominal = 40

var (
	barColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	fillColor = color.RGBA{R: 31, G: 119, B: 180, A: 160}
)

// Config holds the presenter settings
type Config struct {
	OutputDir              string
	UseAdvancedTypesetting bool
	// Format is the image file extension, png by default.
	Format string
	Width  vg.Length
	Height vg.Length
}

// Presenter renders aggregate series as image files
type Presenter struct {
	cfg Config
	ts  typesetter
	log *zap.Logger
}

// New creates a presenter writing into cfg.OutputDir
func New(cfg Config, log *zap.Logger) (*Presenter, error) {
	return newPresenter(cfg, log, probeHandler)
}

func newPresenter(cfg Config, log *zap.Logger, probe probeFunc) (*Presenter, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	if cfg.Width == 0 {
		cfg.Width = 10 * vg.Inch
	}
	if cfg.Height == 0 {
		cfg.Height = 5 * vg.Inch
	}

	// Ensure output directory exists
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	return &Presenter{
		cfg: cfg,
		ts:  newTypesetter(cfg.UseAdvancedTypesetting, probe, log),
		log: log,
	}, nil
}

// AdvancedTypesetting reports whether LaTeX labels are in use
func (pr *Presenter) AdvancedTypesetting() bool { return pr.ts.latex }

// Counts renders a count series as a bar chart, or as a filled step line on
// a time axis when the series is long and chronological.
func (pr *Presenter) Counts(s stats.Series, xlabel string) (string, error) {
	if s.Empty() {
		return pr.skip(s.Name)
	}
	if s.Len() > maxNominal && !s.Points[0].Time.IsZero() {
		return pr.timeSeries(s, xlabel, false)
	}
	return pr.bars(s, xlabel, false)
}

// Ratios renders a ratio series as bars with percent ticks
func (pr *Presenter) Ratios(s stats.Series, xlabel string) (string, error) {
	if s.Empty() {
		return pr.skip(s.Name)
	}
	return pr.bars(s, xlabel, true)
}

// Area renders a chronological ratio series as a filled line
func (pr *Presenter) Area(s stats.Series) (string, error) {
	if s.Empty() {
		return pr.skip(s.Name)
	}
	return pr.timeSeries(s, "", true)
}

// Histogram renders a distribution histogram with an optional exponential fit
func (pr *Presenter) Histogram(name, title, xlabel string, h stats.Histogram, fit *stats.ExpFit) (string, error) {
	if len(h.Bins) == 0 || h.Total() == 0 {
		return pr.skip(name)
	}

	p := pr.newPlot(title)
	p.X.Label.Text = pr.ts.escape(xlabel)
	p.Y.Label.Text = "Count"

	hist := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(h.Bins)),
		Width:     h.Bins[0].Max - h.Bins[0].Min,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	hist.LineStyle.Width = vg.Points(0.5)
	for i, b := range h.Bins {
		hist.Bins[i] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: b.Count}
	}
	p.Add(hist)

	if fit != nil {
		xys := make(plotter.XYs, len(h.Bins))
		for i, b := range h.Bins {
			xys[i] = plotter.XY{X: b.Center(), Y: fit.At(b.Center())}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return "", fmt.Errorf("failed to build fit line for %s: %w", name, err)
		}
		line.Color = color.Black
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(pr.fitLabel(*fit), line)
		p.Legend.Top = true
	}

	return pr.save(p, name)
}

// WeekdayOpenness renders openness per weekday with dashed weekday and
// weekend averages.
func (pr *Presenter) WeekdayOpenness(s stats.Series) (string, error) {
	if s.Len() != 7 {
		return pr.skip(s.Name)
	}

	p := pr.newPlot(s.Title)
	values := s.Values()
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(40))
	if err != nil {
		return "", fmt.Errorf("failed to build bar chart for %s: %w", s.Name, err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)

	weekdayAvg := average(values[:5])
	weekendAvg := average(values[5:])
	for _, avg := range []struct {
		label    string
		from, to float64
		value    float64
	}{
		{"Weekday average", 0, 4, weekdayAvg},
		{"Weekend average", 5, 6, weekendAvg},
	} {
		line, err := plotter.NewLine(plotter.XYs{{X: avg.from, Y: avg.value}, {X: avg.to, Y: avg.value}})
		if err != nil {
			return "", fmt.Errorf("failed to build average line for %s: %w", s.Name, err)
		}
		line.Color = color.Black
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s: %s", avg.label, pr.ts.formatPercent(avg.value, 0)), line)
	}
	p.Legend.Top = true

	p.NominalX(pr.escapeAll(s.Labels())...)
	pr.percentAxis(p, 1)
	return pr.save(p, s.Name)
}

// GroupedBar renders the first keep buckets of several series side by side,
// one colour per series.
func (pr *Presenter) GroupedBar(name, title string, series []stats.Series, keep int) (string, error) {
	if len(series) == 0 || keep <= 0 {
		return pr.skip(name)
	}

	p := pr.newPlot(title)
	n := len(series)
	width := vg.Points(math.Max(4, 60/float64(n+1)))
	var labels []string
	for i, s := range series {
		values := s.Values()
		if len(values) > keep {
			values = values[:keep]
		}
		if labels == nil {
			labels = pr.escapeAll(s.Labels()[:len(values)])
		}

		bars, err := plotter.NewBarChart(plotter.Values(values), width)
		if err != nil {
			return "", fmt.Errorf("failed to build bar chart for %s: %w", s.Name, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width
		p.Add(bars)
		p.Legend.Add(pr.ts.escape(s.Title), bars)
	}
	p.Legend.Top = true
	p.Legend.Left = false

	p.NominalX(labels...)
	pr.percentAxis(p, 1)
	return pr.save(p, name)
}

func (pr *Presenter) bars(s stats.Series, xlabel string, ratio bool) (string, error) {
	p := pr.newPlot(s.Title)
	p.X.Label.Text = pr.ts.escape(xlabel)

	bars, err := plotter.NewBarChart(plotter.Values(s.Values()), pr.barWidth(s.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to build bar chart for %s: %w", s.Name, err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(pr.escapeAll(s.Labels())...)

	if ratio {
		pr.percentAxis(p, 1)
	} else {
		p.Y.Label.Text = "Events"
	}
	return pr.save(p, s.Name)
}

func (pr *Presenter) timeSeries(s stats.Series, xlabel string, ratio bool) (string, error) {
	p := pr.newPlot(s.Title)
	p.X.Label.Text = pr.ts.escape(xlabel)
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan '06"}

	xys := make(plotter.XYs, s.Len())
	for i, pt := range s.Points {
		xys[i] = plotter.XY{X: float64(pt.Time.Unix()), Y: pt.Value}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return "", fmt.Errorf("failed to build line for %s: %w", s.Name, err)
	}
	line.FillColor = fillColor
	line.Color = barColor
	if !ratio {
		line.StepStyle = plotter.PostStep
	}
	p.Add(line)

	if ratio {
		pr.percentAxis(p, 0)
	} else {
		p.Y.Label.Text = "Events"
	}
	return pr.save(p, s.Name)
}

func (pr *Presenter) newPlot(title string) *plot.Plot {
	p := plot.New()
	pr.ts.apply(p)
	p.Title.Text = pr.ts.escape(title)
	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(grid)
	return p
}

func (pr *Presenter) percentAxis(p *plot.Plot, prec int) {
	p.Y.Min = 0
	p.Y.Label.Text = pr.ts.symbol("p")
	p.Y.Tick.Marker = percentTicks{ts: pr.ts, prec: prec}
}

func (pr *Presenter) barWidth(n int) vg.Length {
	usable := pr.cfg.Width - vg.Inch
	w := usable / vg.Length(n+1)
	if w > vg.Points(40) {
		w = vg.Points(40)
	}
	return w
}

func (pr *Presenter) fitLabel(fit stats.ExpFit) string {
	if pr.ts.latex {
		return fmt.Sprintf("$y$ = %.0f exp(%.6f $t$)", fit.A, fit.B)
	}
	return fmt.Sprintf("y = %.0f exp(%.6f*t)", fit.A, fit.B)
}

func (pr *Presenter) escapeAll(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = pr.ts.escape(l)
	}
	return out
}

func (pr *Presenter) save(p *plot.Plot, name string) (string, error) {
	path := filepath.Join(pr.cfg.OutputDir, fmt.Sprintf("%s.%s", name, pr.cfg.Format))
	if err := p.Save(pr.cfg.Width, pr.cfg.Height, path); err != nil {
		return "", fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	pr.log.Debug("Chart written", zap.String("path", path))
	return path, nil
}

func (pr *Presenter) skip(name string) (string, error) {
	pr.log.Debug("Skipping chart for empty series", zap.String("series", name))
	return "", nil
}

// percentTicks labels the default ticks as percentages
type percentTicks struct {
	ts   typesetter
	prec int
}

func (t percentTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = t.ts.formatPercent(ticks[i].Value, t.prec)
		}
	}
	return ticks
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
