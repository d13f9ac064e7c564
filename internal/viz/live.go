package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fopdtsim/internal/fopdt"
)

const (
	windowSamples = 400
	maxSpeed      = 64
)

type TickMsg time.Time

// Model plays back a finished trace: the charts grow up to the play head.
type Model struct {
	trace    *fopdt.Trace
	gains    fopdt.Gains
	title    string
	playHead int
	speed    int
	running  bool
	fps      int
}

func NewModel(tr *fopdt.Trace, g fopdt.Gains, title string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		trace:   tr,
		gains:   g,
		title:   title,
		speed:   1,
		running: true,
		fps:     fps,
	}
}

func (m Model) PlayHead() int { return m.playHead }
func (m Model) Running() bool { return m.running }
func (m Model) Speed() int    { return m.speed }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.playHead = 0
		case "[":
			m.running = false
			m.seek(-1)
		case "]":
			m.running = false
			m.seek(1)
		case "+", "=":
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
	case TickMsg:
		if m.running {
			m.seek(m.speed)
			if m.playHead == m.trace.Len()-1 {
				m.running = false
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) seek(n int) {
	m.playHead += n
	if m.playHead < 0 {
		m.playHead = 0
	}
	if last := m.trace.Len() - 1; m.playHead > last {
		m.playHead = last
	}
}

func (m Model) View() string {
	if m.trace.Len() == 0 {
		return "empty trace\n"
	}

	lo := m.playHead + 1 - windowSamples
	if lo < 0 {
		lo = 0
	}
	hi := m.playHead + 1

	var charts strings.Builder
	for _, s := range Waveforms(m.trace) {
		if s.Caption != "fopdt output" && s.Caption != "pid output" {
			continue
		}
		data := s.Data[lo:hi]
		if len(data) < 2 {
			data = []float64{data[0], data[0]}
		}
		charts.WriteString(asciigraph.Plot(data, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption(s.Caption)))
		charts.WriteString("\n\n")
	}

	status := "PLAYING"
	if !m.running {
		status = "PAUSED"
	}
	if m.playHead == m.trace.Len()-1 {
		status = "DONE"
	}

	sample := m.trace.Sample(m.playHead)
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(fmt.Sprintf("%s  x%d\n\n", status, m.speed))
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2f / %.2fs", sample.T-m.trace.T[0], m.trace.Duration()))
	row("Setpoint", fmt.Sprintf("%.3f", m.trace.Setpoint))
	row("Output y", fmt.Sprintf("%.3f", sample.Y))
	row("Error e", fmt.Sprintf("%.3f", sample.E))
	row("Integral s", fmt.Sprintf("%.3f", sample.S))
	row("PID u", fmt.Sprintf("%.4f", sample.U))
	s.WriteString("\nGAINS\n")
	row("Kp", fmt.Sprintf("%.6g", m.gains.Kp))
	row("Ki", fmt.Sprintf("%.6g", m.gains.Ki))
	row("Kd", fmt.Sprintf("%.6g", m.gains.Kd))
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Restart Q:Quit\n[ ]:Step +-:Speed"))

	return lipgloss.JoinHorizontal(lipgloss.Top, graphStyle.Render(charts.String()), statsStyle.Render(s.String()))
}

// RunLive plays tr back in the terminal until the user quits.
func RunLive(tr *fopdt.Trace, g fopdt.Gains, title string, fps int) error {
	p := tea.NewProgram(NewModel(tr, g, title, fps))
	_, err := p.Run()
	return err
}
