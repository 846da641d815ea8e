package server

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	tuiInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true)
	tuiLogStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	tuiDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
)

type tuiGameStartMsg struct{ seatNames []string }
type tuiHandCompleteMsg struct {
	handNumber, potTotal int
	winnerNames          []string
}
type tuiGameEndMsg struct{ winnerName string }

// tuiModel is a read-only operator dashboard: it renders the same
// hand-complete notifications the Tournament Manager already emits to
// any HandMonitor, scrolled in a viewport. It never reads from or
// writes to the bot wire protocol.
type tuiModel struct {
	seats    []string
	log      []string
	viewport viewport.Model
	width    int
	height   int
	quitting bool
}

func newTUIModel() *tuiModel {
	vp := viewport.New(80, 20)
	return &tuiModel{viewport: vp}
}

func (m *tuiModel) Init() tea.Cmd { return nil }

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.viewport.SetContent(strings.Join(m.log, "\n"))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			m.viewport.ScrollUp(1)
		case "down", "j":
			m.viewport.ScrollDown(1)
		}

	case tuiGameStartMsg:
		m.seats = msg.seatNames
		m.appendLog(tuiInfoStyle.Render(fmt.Sprintf("tournament started: %s", strings.Join(msg.seatNames, ", "))))

	case tuiHandCompleteMsg:
		winners := strings.Join(msg.winnerNames, ", ")
		m.appendLog(fmt.Sprintf("hand %d: pot %d awarded to %s", msg.handNumber, msg.potTotal, winners))

	case tuiGameEndMsg:
		m.appendLog(tuiDoneStyle.Render(fmt.Sprintf("tournament over: %s wins", msg.winnerName)))
	}
	return m, nil
}

func (m *tuiModel) appendLog(line string) {
	m.log = append(m.log, line)
	m.viewport.SetContent(strings.Join(m.log, "\n"))
	m.viewport.GotoBottom()
}

func (m *tuiModel) View() string {
	if m.quitting {
		return ""
	}
	header := tuiHeaderStyle.Render(fmt.Sprintf("pokerwatch — %d seats", len(m.seats)))
	footer := tuiLogStyle.Render("↑/↓ scroll · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}

// TUIMonitor implements HandMonitor by forwarding notifications into a
// running bubbletea program, for the operator console entrypoint.
type TUIMonitor struct {
	program *tea.Program
}

// NewTUIMonitor builds the bubbletea program but does not start it;
// call Run to block until the operator quits.
func NewTUIMonitor() *TUIMonitor {
	return &TUIMonitor{program: tea.NewProgram(newTUIModel())}
}

// Run starts the TUI event loop. It blocks until the operator quits.
func (m *TUIMonitor) Run() error {
	_, err := m.program.Run()
	return err
}

func (m *TUIMonitor) OnGameStart(seatNames []string) {
	m.program.Send(tuiGameStartMsg{seatNames: seatNames})
}

func (m *TUIMonitor) OnHandComplete(handNumber, potTotal int, winnerNames []string) {
	m.program.Send(tuiHandCompleteMsg{handNumber: handNumber, potTotal: potTotal, winnerNames: winnerNames})
}

func (m *TUIMonitor) OnGameEnd(winnerName string) {
	m.program.Send(tuiGameEndMsg{winnerName: winnerName})
}
