package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Renderer redraws a chart of output 0 on every frame. It is a sim.Observer
// for non-interactive runs.
type Renderer struct {
	out       io.Writer
	title     string
	frameRate int
	lastFrame time.Time
	history   []float64
	window    int
}

func NewRenderer(out io.Writer, title string, frameRate int) *Renderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Renderer{
		out:       out,
		title:     title,
		frameRate: frameRate,
		history:   make([]float64, 0, 240),
		window:    240,
	}
}

func (r *Renderer) OnStep(y, u []float64, t float64) {
	if len(y) > 0 {
		r.history = append(r.history, y[0])
		if len(r.history) > r.window {
			r.history = r.history[1:]
		}
	}

	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	fmt.Fprint(r.out, clearScreen+r.Frame(y, u, t))
}

// Frame renders the chart and the current values without clearing.
func (r *Renderer) Frame(y, u []float64, t float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  t=%.2fs\n", r.title, t)
	if len(r.history) > 0 {
		b.WriteString(asciigraph.Plot(r.history,
			asciigraph.Height(15),
			asciigraph.Width(70),
			asciigraph.Caption("y0"),
		))
		b.WriteString("\n")
	}
	b.WriteString("  " + formatValues("y", y, 4) + "  " + formatValues("u", u, 4) + "\n")
	return b.String()
}

func formatValues(prefix string, v []float64, limit int) string {
	parts := make([]string, 0, len(v))
	for i, x := range v {
		if i >= limit {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprintf("%s%d=%.3f", prefix, i, x))
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *Renderer) Stop()  { fmt.Fprint(r.out, showCursor) }
