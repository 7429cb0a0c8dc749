package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Border(lipgloss.NormalBorder(), false, false, true, false)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Manual hands the prompt to a person, who runs it through an external chat
// assistant and pastes the answer back into a terminal text area.
type Manual struct {
	in  io.Reader
	out io.Writer
}

// NewManual creates a Manual reviewer that prints to out and reads keystrokes
// from in.
func NewManual(in io.Reader, out io.Writer) *Manual {
	return &Manual{in: in, out: out}
}

func (m *Manual) Name() string { return "manual" }

func (m *Manual) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	fmt.Fprintln(m.out, bannerStyle.Render("COPY THE PROMPT BELOW INTO YOUR AI CHAT"))
	fmt.Fprintln(m.out, req.UserPrompt)
	fmt.Fprintln(m.out, bannerStyle.Render("PASTE THE RESPONSE BELOW"))

	p := tea.NewProgram(newPasteModel(),
		tea.WithContext(ctx),
		tea.WithInput(m.in),
		tea.WithOutput(m.out),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ReviewResponse{}, ctx.Err()
		}
		return ReviewResponse{}, fmt.Errorf("reading pasted review: %w", err)
	}
	return pastedResponse(final.(pasteModel))
}

func pastedResponse(m pasteModel) (ReviewResponse, error) {
	if m.cancelled {
		return ReviewResponse{}, ErrCancelled
	}
	text := strings.TrimSpace(m.value)
	if text == "" {
		return ReviewResponse{}, errors.New("no review text was pasted")
	}
	return ReviewResponse{Content: text}, nil
}

// pasteModel is a multi-line input. Ctrl+D submits; Esc or Ctrl+C cancels.
type pasteModel struct {
	textarea  textarea.Model
	value     string
	submitted bool
	cancelled bool
}

func newPasteModel() pasteModel {
	ta := textarea.New()
	ta.Placeholder = "Paste the review here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(100)
	ta.SetHeight(15)
	ta.Focus()
	return pasteModel{textarea: ta}
}

func (m pasteModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m pasteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlD:
			m.value = m.textarea.Value()
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.textarea.SetWidth(msg.Width)
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m pasteModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return m.textarea.View() + "\n" + helpStyle.Render("ctrl+d submit • esc cancel") + "\n"
}
