package display

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/penwyp/usage-stats/internal/presentation/formatter"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Terminal writes rendered report lines. Headers are styled only when the
// destination is an interactive terminal.
type Terminal struct {
	w      io.Writer
	styled bool
}

// NewTerminal creates a Terminal for w, enabling styling when w is a TTY.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, styled: IsTerminal(w)}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// WriteLines writes every line followed by a newline.
func (t *Terminal) WriteLines(lines []formatter.Line) error {
	for _, line := range lines {
		if _, err := io.WriteString(t.w, t.render(line)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes p unchanged, for machine readable output.
func (t *Terminal) Write(p []byte) (int, error) {
	return t.w.Write(p)
}

func (t *Terminal) render(line formatter.Line) string {
	if !t.styled || line.Text == "" {
		return line.Text
	}
	switch line.Kind {
	case formatter.LineTitle:
		return titleStyle.Render(line.Text)
	case formatter.LineSection:
		return sectionStyle.Render(line.Text)
	case formatter.LineRule:
		return ruleStyle.Render(line.Text)
	default:
		return line.Text
	}
}
