package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"rental-terms-qa/internal/models"
)

// --- mocks ---

type mockQA struct {
	answer *models.QueryAnswer
	err    error
	asked  []string
}

func (m *mockQA) Answer(_ context.Context, question string) (*models.QueryAnswer, error) {
	m.asked = append(m.asked, question)
	return m.answer, m.err
}

func loadOK(context.Context) error { return nil }

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func pressEnter(m Model) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

// --- tests ---

func TestChat_GatesInputUntilLoaded(t *testing.T) {
	qa := &mockQA{answer: &models.QueryAnswer{Answer: "21"}}
	m := New(context.Background(), qa, loadOK)

	m = typeText(m, "minimum age?")
	m, cmd := pressEnter(m)
	if cmd != nil {
		t.Fatal("expected no question to be sent before the model loads")
	}
	if !strings.Contains(m.status, "not ready") {
		t.Errorf("unexpected status %q", m.status)
	}

	next, _ := m.Update(modelLoadedMsg{})
	m = next.(Model)
	m, cmd = pressEnter(m)
	if cmd == nil {
		t.Fatal("expected question command after load")
	}

	msg := cmd()
	next, _ = m.Update(msg)
	m = next.(Model)

	if len(qa.asked) != 1 || qa.asked[0] != "minimum age?" {
		t.Fatalf("unexpected questions %v", qa.asked)
	}
	if len(m.history) != 1 || m.history[0].answer.Answer != "21" {
		t.Errorf("unexpected history %+v", m.history)
	}
	if m.busy {
		t.Error("expected busy flag cleared")
	}
}

func TestChat_LoadFailure(t *testing.T) {
	m := New(context.Background(), &mockQA{}, func(context.Context) error { return errors.New("no model") })

	msg := m.loadModel()()
	next, _ := m.Update(msg)
	m = next.(Model)

	if m.loaded {
		t.Fatal("model must not be marked loaded")
	}
	if !strings.Contains(m.status, "no model") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestChat_AnswerError(t *testing.T) {
	qa := &mockQA{err: errors.New("embedding model unavailable")}
	m := New(context.Background(), qa, loadOK)
	next, _ := m.Update(modelLoadedMsg{})
	m = typeText(next.(Model), "hello")

	m, cmd := pressEnter(m)
	next, _ = m.Update(cmd())
	m = next.(Model)

	if !strings.HasPrefix(m.status, "Error:") {
		t.Errorf("unexpected status %q", m.status)
	}
	if got := renderHistory(m.history, 80); !strings.Contains(got, "embedding model unavailable") {
		t.Errorf("error missing from history: %q", got)
	}
}

func TestChat_Quit(t *testing.T) {
	m := New(context.Background(), &mockQA{}, loadOK)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestChat_ClearHistory(t *testing.T) {
	qa := &mockQA{answer: &models.QueryAnswer{Answer: "21"}}
	m := New(context.Background(), qa, loadOK)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	next, _ = m.Update(modelLoadedMsg{})
	m = next.(Model)

	m = typeText(m, "minimum age?")
	m, cmd := pressEnter(m)
	next, _ = m.Update(cmd())
	m = next.(Model)
	if len(m.history) != 1 {
		t.Fatalf("expected one exchange, got %d", len(m.history))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = next.(Model)
	if len(m.history) != 0 {
		t.Errorf("expected empty history, got %d", len(m.history))
	}
	if !strings.Contains(m.viewport.View(), "No questions yet") {
		t.Error("expected the empty-history hint after clearing")
	}
}
