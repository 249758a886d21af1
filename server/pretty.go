package main

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// palette colours terminal output. Colour is dropped for NO_COLOR,
// USE_COLOR=0 or a non-terminal writer.
type palette struct {
	w   io.Writer
	out *termenv.Output
}

func newPalette(w io.Writer, color bool) *palette {
	var opts []termenv.OutputOption
	if !color || termenv.EnvNoColor() {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &palette{w: w, out: termenv.NewOutput(w, opts...)}
}

func (p *palette) fg(code, s string) string {
	return p.out.String(s).Foreground(p.out.Color(code)).String()
}

func (p *palette) bold(s string) string { return p.out.String(s).Bold().String() }
func (p *palette) dim(s string) string  { return p.out.String(s).Faint().String() }
func (p *palette) good(s string) string { return p.fg("2", s) }
func (p *palette) warn(s string) string { return p.fg("3", s) }
func (p *palette) bad(s string) string  { return p.fg("1", s) }
func (p *palette) cyan(s string) string { return p.fg("6", s) }

func (p *palette) section(title string) {
	fmt.Fprintf(p.w, "\n%s %s %s\n", p.dim("──"), p.bold(title), p.dim("──"))
}

func (p *palette) line(label, value string) {
	fmt.Fprintf(p.w, "%s %-22s %s\n", p.dim("•"), label, value)
}

// rate colours a predictor win rate against the 1/3 chance level.
func (p *palette) rate(v float64) string {
	s := fmt.Sprintf("%.1f%%", 100*v)
	switch {
	case v >= 0.45:
		return p.good(s)
	case v >= 0.30:
		return p.warn(s)
	default:
		return p.bad(s)
	}
}
