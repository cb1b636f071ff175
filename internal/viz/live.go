package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 16
	historyCapacity = 600
	maxStepsPerTick = 10000
	frameInterval   = time.Second / 30
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2).Foreground(lipgloss.Color("208"))
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a grid with the same loop as sim.Simulator and keeps the
// sampled energies for charting.
type Model struct {
	params       sim.Params
	grid         *heat.Grid
	n            int
	stepsPerTick int
	running      bool
	field        []float64
	energies     []float64
	lastSample   sim.Sample
	lo, hi       float64
	canvas       *Canvas
}

func NewModel(p sim.Params, stepsPerTick int) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	m := Model{
		params:       p,
		stepsPerTick: stepsPerTick,
		running:      true,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
	}
	m.reset()
	return m
}

func (m *Model) reset() {
	m.grid = heat.NewGrid(m.params.Points(), m.params.Dx, m.params.Init)
	m.n = 0
	m.field = m.grid.Field(m.field)
	m.energies = make([]float64, 0, historyCapacity)
	m.lastSample = sim.Sample{Energy: m.grid.Energy()}

	m.lo, m.hi = math.Min(m.params.U0, m.params.U1), math.Max(m.params.U0, m.params.U1)
	for _, v := range m.field {
		m.lo, m.hi = math.Min(m.lo, v), math.Max(m.hi, v)
	}
}

// Done reports whether all Nt steps have run.
func (m Model) Done() bool { return m.n >= m.params.Nt }

func (m Model) Step() int { return m.n }

func (m Model) Energies() []float64 { return m.energies }

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		}
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to count steps, stopping at Nt.
func (m *Model) advance(count int) {
	for i := 0; i < count && m.n < m.params.Nt; i++ {
		if sample, ok := sim.Advance(m.grid, m.params, m.n); ok {
			m.lastSample = sample
			m.energies = append(m.energies, sample.Energy)
			if len(m.energies) > historyCapacity {
				m.energies = m.energies[1:]
			}
		}
		m.n++
	}
	m.field = m.grid.Field(m.field)
}

func (m Model) View() string {
	m.canvas.Clear()
	m.canvas.Profile(m.field, m.lo, m.hi)
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("HEAT EQUATION") + "\n")

	status := "RUNNING"
	switch {
	case m.Done():
		status = "FINISHED"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d / %d", m.n, m.params.Nt))
	row("Time", sim.FormatReal(float64(m.n)*m.params.Dt, 6))
	row("Energy", sim.FormatReal(m.lastSample.Energy, 6))
	row("Nodes", fmt.Sprintf("%d", m.params.Points()))
	row("bc", fmt.Sprintf("%s %s", sim.FormatReal(m.params.U0, 4), sim.FormatReal(m.params.U1, 4)))
	row("Steps/frm", fmt.Sprintf("%d", m.stepsPerTick))

	k := m.params.DiffusionNumber()
	if k > 0.5 {
		s.WriteString(labelStyle.Render("k") + warnStyle.Render(sim.FormatReal(k, 4)+" > 0.5") + "\n")
	} else {
		row("k", sim.FormatReal(k, 4))
	}

	if hist := finite(m.energies); len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\n+/-:Speed"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// finite drops NaN and Inf so a diverging run does not break the chart.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Run starts the live view on the terminal and blocks until the user quits.
func Run(p sim.Params, stepsPerTick int) error {
	_, err := tea.NewProgram(NewModel(p, stepsPerTick)).Run()
	return err
}
