package termui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/huitzo/packkit/internal/ports"
)

type confirmModel struct {
	theme    Theme
	prompt   string
	accepted bool
	done     bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.accepted = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "enter", "esc", "ctrl+c", "q":
		m.accepted = false
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.prompt, m.theme.Help.Render("[y/N]"))
}

// Confirmer asks the user a yes/no question in the terminal. The default
// answer is no.
type Confirmer struct {
	in  io.Reader
	out io.Writer
}

type ConfirmerOption func(*Confirmer)

// WithIO overrides the program's input and output, mostly for tests.
func WithIO(in io.Reader, out io.Writer) ConfirmerOption {
	return func(c *Confirmer) {
		c.in = in
		c.out = out
	}
}

func NewConfirmer(opts ...ConfirmerOption) *Confirmer {
	c := &Confirmer{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.Confirmer = (*Confirmer)(nil)

func (c *Confirmer) Confirm(prompt string) (bool, error) {
	opts := []tea.ProgramOption{}
	if c.in != nil {
		opts = append(opts, tea.WithInput(c.in))
	}
	if c.out != nil {
		opts = append(opts, tea.WithOutput(c.out))
	}

	p := tea.NewProgram(confirmModel{theme: DefaultTheme(), prompt: prompt}, opts...)
	final, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return m.accepted, nil
}
