package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"policygen/entities"
)

// PolicyAPI is what the form needs from the backend.
type PolicyAPI interface {
	GeneratePolicy(ctx context.Context, query string) (*entities.PolicyResponse, error)
}

type policyMsg struct{ resp *entities.PolicyResponse }
type errMsg struct{ err error }

// Model is the Bubble Tea form: a query box, a submit key and a result pane.
type Model struct {
	api      PolicyAPI
	timeout  time.Duration
	input    textarea.Model
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool

	loading bool
	resp    *entities.PolicyResponse
	err     error
	warn    string
}

func New(api PolicyAPI, timeout time.Duration) Model {
	ta := textarea.New()
	ta.Placeholder = "e.g. Draft a home policy that covers fire but excludes floods"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		api:      api,
		timeout:  timeout,
		input:    ta,
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd { return textarea.Blink }

func (m Model) submit(q string) tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := api.GeneratePolicy(ctx, q)
		if err != nil {
			return errMsg{err}
		}
		return policyMsg{resp}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.input.SetWidth(max(20, msg.Width-4))
		reserved := 2 + m.input.Height() + 4
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.viewport.SetContent(m.renderResult())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlS:
			if m.loading {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				m.warn = "Please enter a query."
				return m, nil
			}
			m.warn = ""
			m.loading = true
			m.resp, m.err = nil, nil
			m.viewport.SetContent(m.renderResult())
			return m, tea.Batch(m.spinner.Tick, m.submit(q))
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case policyMsg:
		m.loading = false
		m.resp, m.err = msg.resp, nil
		m.viewport.SetContent(m.renderResult())
		m.viewport.GotoTop()
		return m, nil

	case errMsg:
		// a failed request never leaves an earlier result on screen
		m.loading = false
		m.resp, m.err = nil, msg.err
		m.viewport.SetContent(m.renderResult())
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Insurance Policy Generation Chatbot"))
	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(m.input.View()))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Generating policy...")
	case m.warn != "":
		b.WriteString(warnStyle.Render(m.warn))
	default:
		b.WriteString(helpStyle.Render("ctrl+s submit · pgup/pgdn scroll · esc quit"))
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	return b.String()
}

func (m Model) renderResult() string {
	if m.err != nil {
		return errorStyle.Render("An error occurred: " + m.err.Error())
	}
	if m.resp == nil {
		return ""
	}
	return RenderResponse(m.resp)
}

// RenderResponse formats the policy followed by every retrieved document
// with its score and metadata.
func RenderResponse(resp *entities.PolicyResponse) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Generated Policy"))
	b.WriteString("\n")
	b.WriteString(resp.Policy)
	b.WriteString("\n\n")
	b.WriteString(headingStyle.Render("Retrieved Documents"))
	b.WriteString("\n")
	if len(resp.RetrievedDocuments) == 0 {
		b.WriteString("(none)\n")
	}
	for i, d := range resp.RetrievedDocuments {
		score := 0.0
		if d.Score != nil {
			score = *d.Score
		}
		b.WriteString(docStyle.Render(fmt.Sprintf("Document %d (Score: %.2f)", i+1, score)))
		b.WriteString("\n")
		b.WriteString(d.Content)
		b.WriteString("\n")
		meta, err := json.MarshalIndent(d.Meta, "", "  ")
		if err == nil {
			b.WriteString(metaStyle.Render(string(meta)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	docStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Run starts the full-screen form against api.
func Run(api PolicyAPI, timeout time.Duration) error {
	_, err := tea.NewProgram(New(api, timeout), tea.WithAltScreen()).Run()
	return err
}
