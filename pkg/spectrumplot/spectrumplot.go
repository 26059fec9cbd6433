// Package spectrumplot draws spectra on a shared channel axis so the effect
// of a spectral operation on one pixel can be inspected.
package spectrumplot

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is one curve. X is expressed in channels of the input cube.
type Series struct {
	Label string
	X     []float64
	Y     []float64

	// Points draws markers instead of a line
	Points bool
}

// Options controls the figure
type Options struct {
	Title string

	// Width and Height in centimetres
	Width, Height float64
}

// xys converts a series to plotter points, dropping non-finite samples
func xys(s Series) (plotter.XYs, error) {
	if len(s.X) != len(s.Y) {
		return nil, fmt.Errorf("series %q: %d x values for %d y values", s.Label, len(s.X), len(s.Y))
	}
	pts := make(plotter.XYs, 0, len(s.X))
	for i := range s.X {
		if math.IsNaN(s.Y[i]) || math.IsInf(s.Y[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: s.X[i], Y: s.Y[i]})
	}
	return pts, nil
}

// New builds the plot without saving it
func New(opts Options, series ...Series) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, errors.New("no series to plot")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Intensity"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts, err := xys(s)
		if err != nil {
			return nil, err
		}
		if len(pts) == 0 {
			continue
		}

		if s.Points {
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("series %q: %w", s.Label, err)
			}
			sc.GlyphStyle.Color = plotutil.Color(i)
			sc.GlyphStyle.Radius = vg.Points(3)
			p.Add(sc)
			p.Legend.Add(s.Label, sc)
			continue
		}

		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(s.Label, l)
	}
	p.Legend.Top = true

	return p, nil
}

// Save renders series to filename. The image format follows the file
// extension (png, svg, pdf, ...).
func Save(filename string, opts Options, series ...Series) error {
	p, err := New(opts, series...)
	if err != nil {
		return err
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 16
	}
	if h <= 0 {
		h = 10
	}
	if err := p.Save(vg.Length(w)*vg.Centimeter, vg.Length(h)*vg.Centimeter, filename); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", filename, err)
	}
	return nil
}

// Channels returns the positions 0+offset, 1+offset, ... n-1+offset
func Channels(n int, offset float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i) + offset
	}
	return x
}
