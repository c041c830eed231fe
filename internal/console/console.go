// Package console writes styled, line-oriented output for live crawl reports.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/JakeFAU/crawl-status-check/internal/status"
)

// Style names how a line should be presented.
type Style int

// Supported line styles.
const (
	StyleInfo Style = iota
	StyleComment
	StyleError
	// StylePlain writes text without any styling.
	StylePlain
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StyleInfo:
		return "info"
	case StyleComment:
		return "comment"
	case StyleError:
		return "error"
	case StylePlain:
		return "plain"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// StyleFor maps a status category to the style used to print it.
func StyleFor(c status.Category) Style {
	switch c {
	case status.OK:
		return StyleInfo
	case status.Redirect:
		return StyleComment
	default:
		return StyleError
	}
}

// Console serializes styled lines to a writer. Color is applied only when the
// writer is a terminal that supports it; otherwise lines are written plain.
// It is safe for concurrent use.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	styles map[Style]lipgloss.Style
}

// New builds a Console that renders for w.
func New(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w: w,
		styles: map[Style]lipgloss.Style{
			StyleInfo:    r.NewStyle().Foreground(lipgloss.Color("2")),
			StyleComment: r.NewStyle().Foreground(lipgloss.Color("3")),
			StyleError:   r.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")),
		},
	}
}

// Line writes text followed by a newline using style.
func (c *Console) Line(style Style, text string) error {
	rendered := text
	if st, ok := c.styles[style]; ok {
		rendered = st.Render(text)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.w, rendered+"\n"); err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}

// Blank writes an empty line.
func (c *Console) Blank() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.w, "\n"); err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}
