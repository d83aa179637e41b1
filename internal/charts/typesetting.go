package charts

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
)

// probeLabel exercises the math features the charts use.
const probeLabel = `$p$ 42.0\% $y$ = 1 exp(-0.5 $t$)`

type probeFunc func(text.Handler) error

// typesetter turns chart labels into the markup of the active text handler
type typesetter struct {
	handler text.Handler
	latex   bool
}

// newTypesetter returns a LaTeX typesetter when requested and usable,
// otherwise a plain one.
func newTypesetter(advanced bool, probe probeFunc, log *zap.Logger) typesetter {
	plain := typesetter{handler: text.Plain{Fonts: font.DefaultCache}}
	if !advanced {
		return plain
	}

	latex := text.Latex{Fonts: font.DefaultCache}
	if err := probe(latex); err != nil {
		log.Warn("Advanced typesetting unavailable, using plain labels", zap.Error(err))
		return plain
	}
	return typesetter{handler: latex, latex: true}
}

// probeHandler measures a sample label; the LaTeX handler panics when it
// cannot parse or lay out math.
func probeHandler(hdlr text.Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("text handler failed: %v", r)
		}
	}()
	fnt := font.From(plot.DefaultFont, 12)
	hdlr.Box(probeLabel, fnt)
	return nil
}

// apply sets the handler on every text style of the plot
func (ts typesetter) apply(p *plot.Plot) {
	p.Title.TextStyle.Handler = ts.handler
	p.X.Label.TextStyle.Handler = ts.handler
	p.Y.Label.TextStyle.Handler = ts.handler
	p.X.Tick.Label.Handler = ts.handler
	p.Y.Tick.Label.Handler = ts.handler
	p.Legend.TextStyle.Handler = ts.handler
}

// percent returns the percent sign, escaped for LaTeX
func (ts typesetter) percent() string {
	if ts.latex {
		return `\%`
	}
	return "%"
}

// symbol renders a one letter variable name
func (ts typesetter) symbol(s string) string {
	if ts.latex {
		return "$" + s + "$"
	}
	return s
}

// escape protects free text from being read as LaTeX markup
func (ts typesetter) escape(s string) string {
	if !ts.latex {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `$`, `\$`, `_`, `\_`, `&`, `\&`, `#`, `\#`)
	return r.Replace(s)
}

// formatPercent formats a ratio as a percentage with the given precision
func (ts typesetter) formatPercent(ratio float64, prec int) string {
	return fmt.Sprintf("%.*f%s", prec, ratio*100, ts.percent())
}
