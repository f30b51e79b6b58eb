package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ltinorm/internal/config"
	"github.com/san-kum/ltinorm/internal/l1norm"
	"github.com/san-kum/ltinorm/internal/lti"
	"github.com/san-kum/ltinorm/internal/viz"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type state int

const (
	stateMenu state = iota
	stateRun
)

type (
	iterationMsg struct {
		run int
		it  l1norm.Iteration
	}
	doneMsg struct {
		run    int
		result l1norm.Result
		err    error
	}
	tickMsg time.Time
)

// Settings are the refinement limits used for every run started from the TUI.
type Settings struct {
	RelTol    float64
	MaxLength int
}

type model struct {
	state    state
	cursor   int
	presets  []string
	settings Settings

	name      string
	run       int
	events    chan tea.Msg
	quit      chan struct{}
	history   []l1norm.Iteration
	result    *l1norm.Result
	err       error
	started   time.Time
	elapsed   time.Duration
	frame     int
	showGraph bool

	width  int
	height int
}

func newModel(settings Settings) model {
	return model{
		presets:   config.ListPresets(),
		settings:  settings,
		showGraph: true,
		width:     80,
		height:    24,
	}
}

// NewWatch returns a model that starts refining sys immediately.
func NewWatch(name string, sys *lti.System, settings Settings) tea.Model {
	m := newModel(settings)
	m.start(name, sys)
	return m
}

// NewMenu returns a model that lets the user pick a preset first.
func NewMenu(settings Settings) tea.Model {
	return newModel(settings)
}

// Run blocks until the user quits.
func Run(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	if m.state == stateRun {
		return tea.Batch(waitForEvent(m.events), tick())
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

// start launches the estimator in a goroutine. Iterations are forwarded to
// the program through m.events until quit is closed.
func (m *model) start(name string, sys *lti.System) {
	m.state = stateRun
	m.name = name
	m.run++
	m.history = nil
	m.result = nil
	m.err = nil
	m.started = time.Now()
	m.elapsed = 0
	m.events = make(chan tea.Msg, 16)
	m.quit = make(chan struct{})

	run, events, quit := m.run, m.events, m.quit
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-quit:
		}
	}
	opts := []l1norm.Option{
		l1norm.WithObserver(func(it l1norm.Iteration) { send(iterationMsg{run: run, it: it}) }),
	}
	if m.settings.RelTol > 0 {
		opts = append(opts, l1norm.WithRelTol(m.settings.RelTol))
	}
	if m.settings.MaxLength > 0 {
		opts = append(opts, l1norm.WithMaxLength(m.settings.MaxLength))
	}

	go func() {
		res, err := l1norm.Norm(sys, opts...)
		send(doneMsg{run: run, result: res, err: err})
	}()
}

func (m *model) stop() {
	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
}

func (m model) running() bool {
	return m.state == stateRun && m.result == nil && m.err == nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case iterationMsg:
		if msg.run != m.run || m.state != stateRun {
			return m, nil
		}
		m.history = append(m.history, msg.it)
		return m, waitForEvent(m.events)
	case doneMsg:
		if msg.run != m.run || m.state != stateRun {
			return m, nil
		}
		m.elapsed = time.Since(m.started)
		if msg.err != nil {
			m.err = msg.err
		} else {
			res := msg.result
			m.result = &res
		}
		return m, nil
	case tickMsg:
		if !m.running() {
			return m, nil
		}
		m.frame++
		m.elapsed = time.Since(m.started)
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.stop()
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	default:
		return m.runKey(msg)
	}
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return m, nil
		}
		name := m.presets[m.cursor]
		sys, err := config.GetPreset(name).System.Build()
		if err != nil {
			m.state = stateRun
			m.name = name
			m.err = err
			return m, nil
		}
		m.start(name, sys)
		return m, tea.Batch(tea.ClearScreen, waitForEvent(m.events), tick())
	}
	return m, nil
}

func (m model) runKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.stop()
		return m, tea.Quit
	case "esc", "backspace":
		m.stop()
		m.state = stateMenu
		m.events = nil
		return m, tea.ClearScreen
	case "g":
		m.showGraph = !m.showGraph
	}
	return m, nil
}

func (m model) View() string {
	if m.state == stateMenu {
		return m.viewMenu()
	}
	return m.viewRun()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n  " + viz.GradientText("ltinorm", "#00ffff", "#ff00ff") + dim.Render("  L1 norm refinement") + "\n\n")
	for i, name := range m.presets {
		desc := ""
		if p := config.Presets[name]; p != nil {
			desc = p.Description
		}
		if i == m.cursor {
			b.WriteString(cyan.Render("  ▸ "+fmt.Sprintf("%-16s", name)) + white.Render(desc) + "\n")
		} else {
			b.WriteString(dim.Render("    "+fmt.Sprintf("%-16s", name)+desc) + "\n")
		}
	}
	b.WriteString("\n" + viz.KeyHint.Render("  ↑/↓ select · enter run · q quit") + "\n")
	return b.String()
}

func (m model) viewRun() string {
	w := max(m.width-4, 40)
	var b strings.Builder

	status := yellow.Render(spinner[m.frame%len(spinner)] + " refining")
	switch {
	case m.err != nil:
		status = red.Render("✗ failed")
	case m.result != nil && m.result.Converged:
		status = green.Render("✓ converged")
	case m.result != nil:
		status = yellow.Render("■ sample ceiling reached")
	}
	b.WriteString("\n  " + viz.Title.Render(m.name) + "  " + status + dim.Render(fmt.Sprintf("  %.1fs", m.elapsed.Seconds())) + "\n\n")

	if m.err != nil {
		b.WriteString("  " + red.Render(m.err.Error()) + "\n")
		b.WriteString("\n" + viz.KeyHint.Render("  esc menu · q quit") + "\n")
		return b.String()
	}

	if last, ok := m.last(); ok {
		b.WriteString(fmt.Sprintf("  %s %s   %s %s   %s %s\n",
			dim.Render("refinement"), white.Render(fmt.Sprint(last.Index)),
			dim.Render("samples"), white.Render(fmt.Sprint(last.Samples)),
			dim.Render("horizon"), white.Render(fmt.Sprintf("%.4g", last.Horizon)),
		))
		b.WriteString(fmt.Sprintf("  %s [%.10g, %.10g]\n", dim.Render("bounds"), last.Lower, last.Upper))
		b.WriteString(fmt.Sprintf("  %s %s %s\n", dim.Render("half-width"),
			viz.ProgressBar(m.progress(), min(w-30, 40)), white.Render(fmt.Sprintf("%.2e", last.HalfWidth))))
		if len(m.history) > 1 {
			b.WriteString("  " + dim.Render("decay      ") + viz.Sparkline(m.widthHistory(), min(w-12, 4*len(m.history))) + "\n")
		}
	} else if m.result == nil {
		b.WriteString("  " + dim.Render("computing initial bounds...") + "\n")
	}

	if m.result != nil {
		b.WriteString("\n" + viz.Box("result", viz.RenderL1(*m.result), min(w, 72)) + "\n")
	}

	if m.showGraph && len(m.history) > 1 {
		b.WriteString("\n" + m.graph(min(w-10, 60)) + "\n")
	}

	b.WriteString("\n" + viz.KeyHint.Render("  g toggle graph · esc menu · q quit") + "\n")
	return b.String()
}

func (m model) last() (l1norm.Iteration, bool) {
	if len(m.history) == 0 {
		return l1norm.Iteration{}, false
	}
	return m.history[len(m.history)-1], true
}

// progress maps the half-width onto [0, 1] on a log scale between the first
// refinement and the target tolerance.
func (m model) progress() float64 {
	if len(m.history) == 0 {
		return 0
	}
	rtol := m.settings.RelTol
	if rtol <= 0 {
		rtol = l1norm.DefaultRelTol
	}
	first := m.history[0].HalfWidth
	last := m.history[len(m.history)-1].HalfWidth
	if !(first > rtol) {
		return 1
	}
	if !(last > 0) {
		return 1
	}
	return max(0, min(math.Log(first/last)/math.Log(first/rtol), 1))
}

func (m model) widthHistory() []float64 {
	out := make([]float64, len(m.history))
	for i, it := range m.history {
		out[i] = -math.Log10(math.Max(it.HalfWidth, 1e-300))
	}
	return out
}

func (m model) graph(width int) string {
	lower := make([]float64, 0, len(m.history))
	upper := make([]float64, 0, len(m.history))
	for _, it := range m.history {
		if math.IsNaN(it.Lower) || math.IsNaN(it.Upper) || math.IsInf(it.Upper, 0) {
			continue
		}
		lower = append(lower, it.Lower)
		upper = append(upper, it.Upper)
	}
	if len(lower) < 2 {
		return ""
	}
	return asciigraph.PlotMany([][]float64{lower, upper},
		asciigraph.Height(8),
		asciigraph.Width(max(width, 10)),
		asciigraph.Precision(6),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.SeriesLegends("lower", "upper"),
		asciigraph.Caption("L1 bounds per refinement"),
	)
}
