package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"menusearch/internal/domain"
	"menusearch/internal/service"
)

// ResolverPort is the TUI-facing subset of the query service.
type ResolverPort interface {
	Resolve(ctx context.Context, query string) (domain.Resolution, *service.Trace, error)
}

// Model is the Bubble Tea model for the interactive menu search.
type Model struct {
	resolver  ResolverPort
	input     textinput.Model
	viewport  viewport.Model
	result    domain.Resolution
	trace     *service.Trace
	answered  bool
	showTrace bool
	status    string
	ready     bool
}

// New creates a new TUI model instance.
func New(resolver ResolverPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a dish and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{resolver: resolver, input: ti, viewport: vp, status: "Ready. Type to search the menu."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 1
		totalFooterLines := 1
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				result, trace, err := m.resolver.Resolve(context.Background(), q)
				m.trace = trace
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answered = false
				} else {
					m.status = fmt.Sprintf("Result for %q (tab toggles trace)", q)
					m.result = result
					m.answered = true
				}
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		case "tab":
			m.showTrace = !m.showTrace
			m.viewport.SetContent(m.renderResult())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Menu Search")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	result := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + result + "\n" + input + "\n" + status
}

func (m Model) renderResult() string {
	if m.showTrace && m.trace != nil {
		return m.trace.String()
	}
	if !m.answered {
		if m.trace != nil {
			return "The last query failed. Press tab for the trace."
		}
		return "No results yet."
	}
	if !m.result.Matched {
		return noMatchStyle.Render("No sufficiently close match.")
	}
	return fmt.Sprintf("%s\n\nscore %.4f",
		matchStyle.Render(m.result.Hit.Name), m.result.Hit.Score)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	matchStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	noMatchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
