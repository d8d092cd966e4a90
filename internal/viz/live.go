package viz

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bellsim/internal/bell"
	"github.com/san-kum/bellsim/internal/experiment"
	"github.com/san-kum/bellsim/internal/metrics"
	"github.com/san-kum/bellsim/internal/report"
)

const (
	historyCapacity = 600
	barWidth        = 40
	tickRate        = time.Second / 30
)

type TickMsg time.Time

// Model runs a protocol in batches and tracks the running difference rate.
type Model struct {
	protocol experiment.Protocol
	seed     int64
	src      *rand.Rand
	rate     *metrics.Convergence
	batch    int
	total    int
	done     int
	running  bool
	showHelp bool
}

// NewModel prepares a live run of total trials, batch trials per tick.
func NewModel(p experiment.Protocol, seed int64, batch, total int) Model {
	if batch < 1 {
		batch = 1
	}
	if total < 0 {
		total = 0
	}
	return Model{
		protocol: p,
		seed:     seed,
		src:      bell.NewSource(seed),
		rate:     metrics.NewConvergence(batch),
		batch:    batch,
		total:    total,
		running:  true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and runs one batch per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.Finished() {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	n := min(m.batch, m.total-m.done)
	for i := 0; i < n; i++ {
		m.rate.Observe(m.protocol.Trial(m.src))
	}
	m.done += n
}

func (m *Model) reset() {
	m.src = bell.NewSource(m.seed)
	m.rate.Reset()
	m.done = 0
	m.running = true
}

func (m Model) Done() int { return m.done }

func (m Model) Finished() bool { return m.done >= m.total }

// Rate returns the running difference percentage and whether any trial ran.
func (m Model) Rate() (float64, bool) {
	if m.done == 0 {
		return 0, false
	}
	return m.rate.Value(), true
}

func (m Model) row(label, value string) string {
	return labelStyle().Render(label) + value + "\n"
}

// View renders the TUI interface.
func (m Model) View() string {
	var s strings.Builder

	title := strings.ToUpper(m.protocol.Name())
	if h, ok := m.protocol.(*experiment.Hidden); ok {
		title += fmt.Sprintf(" (oddball %.0f%%)", 100*h.Mix)
	}
	s.WriteString(headerStyle().Render(title) + "\n")

	status := "RUNNING"
	switch {
	case m.Finished():
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	expected := 100 * m.protocol.Expected()
	observed := "no data"
	if pct, ok := m.Rate(); ok {
		observed = fmt.Sprintf("%.3f%%", pct)
	}

	s.WriteString(m.row("observed", valueStyle().Render(observed)))
	s.WriteString(m.row("expected", fmt.Sprintf("%.3f%%", expected)))
	if _, ok := m.protocol.(*experiment.Hidden); ok {
		s.WriteString(m.row("bound", fmt.Sprintf(">= %.3f%%", 100*bell.BellBound)))
	}
	s.WriteString(m.row("trials", fmt.Sprintf("%d / %d", m.done, m.total)))

	fraction := 1.0
	if m.total > 0 {
		fraction = float64(m.done) / float64(m.total)
	}
	s.WriteString("\n" + ProgressBar(fraction, barWidth) + "\n")

	history := m.rate.History()
	if len(history) > historyCapacity {
		history = history[len(history)-historyCapacity:]
	}
	s.WriteString(Sparkline(history, expected, barWidth) + "\n")
	if len(history) > 1 {
		s.WriteString("\n" + report.Plot(history, "running difference rate (%)",
			asciigraph.Height(8),
			asciigraph.Width(60),
		) + "\n")
	}

	if m.showHelp {
		s.WriteString(helpStyle().Render("space pause  r restart  t theme  ? help  q quit") + "\n")
	}

	return s.String()
}
