package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Confirmer asks the yes/no question in the terminal.
type Confirmer struct {
	in  io.Reader
	out io.Writer
}

func NewConfirmer() *Confirmer {
	return &Confirmer{in: os.Stdin, out: os.Stdout}
}

func NewConfirmerWithIO(in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{in: in, out: out}
}

func (c *Confirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
	)

	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	m, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return m.answer, nil
}

type confirmModel struct {
	prompt string
	yes    bool
	answer bool
	done   bool
}

// No is preselected.
func newConfirmModel(prompt string) confirmModel {
	return confirmModel{prompt: prompt}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q", "n", "N":
		m.answer = false
		m.done = true
		return m, tea.Quit
	case "y", "Y":
		m.answer = true
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.yes = !m.yes
	case "enter":
		m.answer = m.yes
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		if m.answer {
			return m.prompt + " yes\n"
		}
		return m.prompt + " no\n"
	}

	b := &strings.Builder{}
	fmt.Fprintln(b, m.prompt)
	yes, no := "  Yes  ", "[ No ]"
	if m.yes {
		yes, no = "[ Yes ]", "  No  "
	}
	fmt.Fprintf(b, "  %s %s\n", yes, no)
	fmt.Fprintln(b, "\ny/n to answer, left/right and enter to choose, esc to cancel")
	return b.String()
}
