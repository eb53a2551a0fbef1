package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/vehicle"
)

const historyLen = 400

type tickMsg time.Time

// Live steps a vehicle in wall-clock time and charts its velocity.
type Live struct {
	veh      *vehicle.Integrator
	profile  profile.Profile
	name     string
	duration float64
	fps      int

	step     int
	throttle float64
	incline  float64
	paused   bool
	speed    float64
	history  []float64
	width    int
}

func NewLive(veh *vehicle.Integrator, prof profile.Profile, name string, duration float64, fps int) *Live {
	if fps <= 0 {
		fps = 30
	}
	return &Live{
		veh:      veh,
		profile:  prof,
		name:     name,
		duration: duration,
		fps:      fps,
		speed:    1.0,
		history:  make([]float64, 0, historyLen),
		width:    80,
	}
}

func (m *Live) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Live) Init() tea.Cmd { return m.tick() }

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space":
			m.paused = !m.paused
		case "r":
			m.reset()
		case "+", "=":
			m.speed *= 2
		case "-":
			if m.speed > 0.125 {
				m.speed /= 2
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if !m.paused && !m.Done() {
			m.Advance(m.stepsPerFrame())
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Live) reset() {
	m.veh.Reset()
	m.step = 0
	m.history = m.history[:0]
}

func (m *Live) stepsPerFrame() int {
	dt := m.veh.Params().Dt
	n := int(m.speed / (float64(m.fps) * dt))
	if n < 1 {
		n = 1
	}
	return n
}

// Advance takes n simulation steps, stopping at the configured duration.
func (m *Live) Advance(n int) {
	dt := m.veh.Params().Dt
	for i := 0; i < n && !m.Done(); i++ {
		t := float64(m.step) * dt
		m.throttle, m.incline = m.profile.Inputs(t, m.veh.State())
		m.veh.Step(m.throttle, m.incline)
		m.step++
	}
	m.history = append(m.history, m.veh.State().V)
	if len(m.history) > historyLen {
		m.history = m.history[len(m.history)-historyLen:]
	}
}

func (m *Live) Done() bool {
	return float64(m.step)*m.veh.Params().Dt >= m.duration
}

func (m *Live) Time() float64 { return float64(m.step) * m.veh.Params().Dt }

func (m *Live) View() string {
	var b strings.Builder

	status := StatusRunning.Render("● running")
	if m.paused {
		status = StatusPaused.Render("❚❚ paused")
	} else if m.Done() {
		status = Subtle.Render("■ done")
	}
	b.WriteString(Title.Render("longsim · "+m.name) + "  " + status + "  " + Subtle.Render(fmt.Sprintf("x%.3g", m.speed)) + "\n\n")

	panel := StatePanel(m.Time(), m.veh.State(), m.throttle, m.incline)
	chartWidth := m.width - lipgloss.Width(panel) - 14
	if chartWidth < 20 {
		chartWidth = 20
	}
	chart := Plot(m.history, "velocity (m/s)", chartWidth, 12)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panel, "  ", chart))
	b.WriteString("\n\n")

	progress := 0.0
	if m.duration > 0 {
		progress = m.Time() / m.duration
	}
	b.WriteString(ProgressBar(progress, 40) + "\n")
	b.WriteString(KeyHint.Render("space pause · r reset · +/- speed · q quit"))
	return b.String()
}

// RunLive blocks until the user quits.
func RunLive(m *Live) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
