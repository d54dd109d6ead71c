package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lsim/internal/control"
	"github.com/san-kum/lsim/internal/linalg"
	"github.com/san-kum/lsim/internal/sim"
	"github.com/san-kum/lsim/internal/statespace"
)

const (
	historyLen = 200
	nudgeStep  = 0.1
	tuneRatio  = 0.1
	tuneFloor  = 0.01
	frameTime  = 33 * time.Millisecond
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameTime, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Tunable is an input whose parameters can be changed while it runs, such
// as *control.PID.
type Tunable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64)
}

var _ Tunable = (*control.PID)(nil)

// model steps a state-space model on a timer and charts output 0. When the
// input is a *control.Manual the arrow keys move input 0; when it is Tunable
// tab selects a parameter and [ ] change it.
type model struct {
	title  string
	sys    *statespace.Model
	input  sim.Input
	manual *control.Manual
	tuner  Tunable
	params []string
	param  int

	step    int
	steps   int
	speed   int
	paused  bool
	y, u    []float64
	history []float64
	err     error

	bar   progress.Model
	width int
}

func newModel(title string, sys *statespace.Model, input sim.Input, steps int) model {
	m := model{
		title:   title,
		sys:     sys,
		input:   input,
		steps:   steps,
		speed:   1,
		y:       sys.Output().Vector(),
		history: make([]float64, 0, historyLen),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		width:   80,
	}
	if manual, ok := input.(*control.Manual); ok {
		m.manual = manual
	}
	if tuner, ok := input.(Tunable); ok {
		m.tuner = tuner
		for name := range tuner.GetParams() {
			m.params = append(m.params, name)
		}
		sort.Strings(m.params)
	}
	return m
}

// tune moves the selected parameter by a tenth of its magnitude, at least
// tuneFloor, in the direction of sign.
func (m *model) tune(sign float64) {
	if m.tuner == nil || len(m.params) == 0 {
		return
	}
	name := m.params[m.param]
	v := m.tuner.GetParams()[name]
	m.tuner.SetParam(name, v+sign*max(tuneRatio*math.Abs(v), tuneFloor))
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(50, max(10, msg.Width-20))
		return m, nil
	case tickMsg:
		if !m.paused && !m.done() {
			for i := 0; i < m.speed && !m.done(); i++ {
				m.advance()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) done() bool {
	return m.err != nil || m.step >= m.steps
}

func (m *model) advance() {
	t := float64(m.step) * m.sys.TimeStep()
	u := m.input.Compute(m.y, t)
	if err := m.sys.Step(linalg.ColumnVector(u...)); err != nil {
		m.err = &sim.StepError{Step: m.step, Time: t, Wrapped: err}
		return
	}
	m.u = u
	m.y = m.sys.Output().Vector()
	if !m.sys.Output().IsFinite() {
		m.err = &sim.StepError{Step: m.step, Time: t, Wrapped: sim.ErrInvalidState}
		return
	}
	if len(m.y) > 0 {
		m.history = append(m.history, m.y[0])
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
	}
	m.step++
}

func (m *model) reset() {
	m.sys.Reset()
	if r, ok := m.input.(sim.Resetter); ok {
		r.Reset()
	}
	m.step = 0
	m.err = nil
	m.u = nil
	m.y = m.sys.Output().Vector()
	m.history = m.history[:0]
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "space", "p":
		m.paused = !m.paused
	case "r":
		m.reset()
	case "+", "=":
		m.speed = min(m.speed*2, 64)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "up", "k":
		if m.manual != nil {
			m.manual.Nudge(0, nudgeStep)
		}
	case "down", "j":
		if m.manual != nil {
			m.manual.Nudge(0, -nudgeStep)
		}
	case "tab":
		if len(m.params) > 0 {
			m.param = (m.param + 1) % len(m.params)
		}
	case "]":
		m.tune(1)
	case "[":
		m.tune(-1)
	}
	return m, nil
}

func (m model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("FAILED")
	case m.step >= m.steps:
		return runningStyle.Render("DONE")
	case m.paused:
		return pausedStyle.Render("PAUSED")
	}
	return runningStyle.Render("RUNNING")
}

func (m model) View() string {
	var b strings.Builder

	header := titleStyle.Render(m.title) + "  " + m.status() + "  " +
		labelStyle.Render("solver ") + valueStyle.Render(m.sys.Solver().String()) + "  " +
		labelStyle.Render("speed ") + valueStyle.Render(fmt.Sprintf("%dx", m.speed))
	b.WriteString(header + "\n\n")

	chart := "waiting for samples"
	if len(m.history) > 1 {
		chart = asciigraph.Plot(m.history,
			asciigraph.Height(12),
			asciigraph.Width(min(60, max(20, m.width-20))),
			asciigraph.Caption("y0"),
		)
	}
	b.WriteString(panelStyle.Render(chart) + "\n")

	frac := 0.0
	if m.steps > 0 {
		frac = float64(m.step) / float64(m.steps)
	}
	t := float64(m.step) * m.sys.TimeStep()
	b.WriteString(m.bar.ViewAs(frac) + "  " + labelStyle.Render(fmt.Sprintf("t=%.2fs", t)) + "\n\n")

	values := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("outputs ")+valueStyle.Render(formatValues("y", m.y, 6)),
		labelStyle.Render("inputs  ")+valueStyle.Render(formatValues("u", m.u, 6)),
	)
	b.WriteString(values + "\n")
	if m.tuner != nil {
		b.WriteString(labelStyle.Render("params  ") + m.paramView() + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	hints := []string{keyHint("space", "pause"), keyHint("r", "reset"), keyHint("+/-", "speed")}
	if m.manual != nil {
		hints = append(hints, keyHint("↑/↓", "input"))
	}
	if m.tuner != nil {
		hints = append(hints, keyHint("tab", "param"), keyHint("[/]", "tune"))
	}
	hints = append(hints, keyHint("q", "quit"))
	b.WriteString("\n" + strings.Join(hints, "  ") + "\n")
	return b.String()
}

func (m model) paramView() string {
	values := m.tuner.GetParams()
	parts := make([]string, len(m.params))
	for i, name := range m.params {
		text := fmt.Sprintf("%s=%.4g", name, values[name])
		if i == m.param {
			parts[i] = runningStyle.Render("[" + text + "]")
		} else {
			parts[i] = valueStyle.Render(text)
		}
	}
	return strings.Join(parts, " ")
}

// RunLive runs sys interactively for the duration in cfg.
func RunLive(title string, sys *statespace.Model, input sim.Input, cfg sim.Config) error {
	steps := sim.New(sys, input).Steps(cfg)
	p := tea.NewProgram(newModel(title, sys, input, steps), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
