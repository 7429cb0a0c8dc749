package providers

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(m pasteModel, text string) pasteModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(pasteModel)
}

func TestPasteModel_Submit(t *testing.T) {
	m := typeInto(newPasteModel(), "Looks good. SCORE: 90/100")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(pasteModel)

	if !m.submitted {
		t.Fatal("expected submitted")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	resp, err := pastedResponse(m)
	if err != nil {
		t.Fatalf("pastedResponse error: %v", err)
	}
	if resp.Content != "Looks good. SCORE: 90/100" {
		t.Errorf("Content = %q", resp.Content)
	}
	if m.View() != "" {
		t.Error("View should be empty after submit")
	}
}

func TestPasteModel_Cancel(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := typeInto(newPasteModel(), "partial")
		next, _ := m.Update(tea.KeyMsg{Type: key})
		if _, err := pastedResponse(next.(pasteModel)); !errors.Is(err, ErrCancelled) {
			t.Errorf("key %v: err = %v, want ErrCancelled", key, err)
		}
	}
}

func TestPasteModel_EmptySubmit(t *testing.T) {
	next, _ := newPasteModel().Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if _, err := pastedResponse(next.(pasteModel)); err == nil {
		t.Error("expected error for empty paste")
	}
}

func TestPasteModel_WindowResize(t *testing.T) {
	next, _ := newPasteModel().Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m := next.(pasteModel)
	if m.textarea.Width() > 60 {
		t.Errorf("textarea width = %d, want <= 60", m.textarea.Width())
	}
	if m.View() == "" {
		t.Error("View should render while editing")
	}
}
