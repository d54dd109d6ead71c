package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/lsim/internal/analysis"
	"github.com/san-kum/lsim/internal/sim"
)

var (
	ErrUnsupportedFormat = errors.New("export: unsupported image format")
	ErrEmpty             = errors.New("export: nothing to plot")
)

const (
	width  = 8 * vg.Inch
	height = 5 * vg.Inch
)

var formats = map[string]bool{".png": true, ".svg": true, ".pdf": true, ".eps": true, ".jpg": true, ".jpeg": true}

func checkFormat(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !formats[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

func series(xs []float64, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range pts {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// ResponsePlot draws every output and input of result against time. The
// image format follows the extension of path.
func ResponsePlot(path string, result *sim.Result, title string) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	if result == nil || len(result.Times) == 0 {
		return ErrEmpty
	}

	p := newPlot(title, "time (s)", "value")
	var lines []any
	for ch := range result.Outputs[0] {
		lines = append(lines, fmt.Sprintf("y%d", ch), series(result.Times, result.Output(ch)))
	}
	for ch := range result.Inputs[0] {
		lines = append(lines, fmt.Sprintf("u%d", ch), series(result.Times, result.Input(ch)))
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return err
	}
	return p.Save(width, height, path)
}

// PhasePlot draws a state trajectory.
func PhasePlot(path string, portrait *analysis.PhasePortrait, title string) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	if portrait == nil || len(portrait.Points) == 0 {
		return ErrEmpty
	}

	p := newPlot(title, fmt.Sprintf("x%d", portrait.XIndex), fmt.Sprintf("x%d", portrait.YIndex))
	pts := make(plotter.XYs, len(portrait.Points))
	for i, pt := range portrait.Points {
		pts[i].X, pts[i].Y = pt.X, pt.Y
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return p.Save(width, height, path)
}

// SpectrumPlot draws the power spectrum of data sampled every dt seconds.
func SpectrumPlot(path string, data []float64, dt float64, title string) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	ps := analysis.PowerSpectrum(data)
	if len(ps) == 0 {
		return ErrEmpty
	}

	p := newPlot(title, "frequency (Hz)", "|X|")
	line, err := plotter.NewLine(series(analysis.FrequencyAxis(len(data), dt), ps))
	if err != nil {
		return err
	}
	p.Add(line)
	return p.Save(width, height, path)
}
