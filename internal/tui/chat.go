// Package tui implements the interactive rental terms chat.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rental-terms-qa/internal/models"
)

// QAPort is the TUI-facing subset of the question answering service.
type QAPort interface {
	Answer(ctx context.Context, question string) (*models.QueryAnswer, error)
}

// LoadFunc loads the embedding model; the chat accepts questions once it returns nil.
type LoadFunc func(ctx context.Context) error

type exchange struct {
	question string
	answer   *models.QueryAnswer
	err      error
}

type modelLoadedMsg struct{ err error }

type answerMsg struct {
	question string
	answer   *models.QueryAnswer
	err      error
}

// Model is the Bubble Tea model for the chat.
type Model struct {
	ctx      context.Context
	service  QAPort
	load     LoadFunc
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	status   string
	loaded   bool
	busy     bool
	ready    bool
}

// New creates a chat model. The model is loaded asynchronously from Init.
func New(ctx context.Context, service QAPort, load LoadFunc) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about rental terms and press Enter (ctrl+l clears history)"
	ti.Focus()
	ti.CharLimit = 500
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		service:  service,
		load:     load,
		input:    ti,
		viewport: vp,
		status:   "Loading embedding model...",
	}
}

// Init starts the cursor blink and the model load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadModel())
}

func (m Model) loadModel() tea.Cmd {
	return func() tea.Msg {
		return modelLoadedMsg{err: m.load(m.ctx)}
	}
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.service.Answer(m.ctx, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// Update handles key, window and async result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, hh := historyBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input line, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-hh)
		m.refresh()
		return m, nil

	case modelLoadedMsg:
		if msg.err != nil {
			m.status = "Embedding model unavailable: " + msg.err.Error()
			return m, nil
		}
		m.loaded = true
		m.status = "Ready. Ask a question."
		return m, nil

	case answerMsg:
		m.busy = false
		m.history = append(m.history, exchange{question: msg.question, answer: msg.answer, err: msg.err})
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Answered with %d sources (%s)", len(msg.answer.Sources), msg.answer.Status)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			if !m.loaded {
				m.status = "Embedding model is not ready yet."
				return m, nil
			}
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			m.input.SetValue("")
			return m, m.ask(q)
		case "ctrl+l":
			m.history = nil
			m.status = "Chat history cleared."
			m.refresh()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Rental Terms Q&A")
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + history + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderHistory(m.history, m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderHistory(history []exchange, width int) string {
	if len(history) == 0 {
		return sourceStyle.Render("No questions yet. Try \"What is the minimum age to rent a car?\"")
	}

	wrap := lipgloss.NewStyle().Width(max(20, width-2))
	var b strings.Builder
	for i, ex := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(questionStyle.Render("You: ") + wrap.Render(ex.question) + "\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render("Error: "+ex.err.Error()) + "\n")
			continue
		}
		b.WriteString(answerStyle.Render("Assistant: ") + wrap.Render(ex.answer.Answer) + "\n")
		for _, s := range ex.answer.Sources {
			b.WriteString(sourceStyle.Render(fmt.Sprintf("  - %s / %s: %s (%.3f)",
				s.Country, s.VehicleType, s.Section.Title(), s.SimilarityScore)) + "\n")
		}
	}
	return b.String()
}

var (
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
