package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BC34A"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#dce0e5")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5A623"))
)

// Terminal is a line-oriented Channel over a reader and writer (stdin/stdout).
type Terminal struct {
	out io.Writer

	mu    sync.Mutex
	lines chan readResult
	in    *bufio.Reader
	once  sync.Once
}

type readResult struct {
	line string
	err  error
}

// NewTerminal creates a terminal channel.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan readResult),
	}
}

// Show renders a titled panel.
func (t *Terminal) Show(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	if title != "" {
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}
	if body = strings.TrimRight(body, "\n"); body != "" {
		b.WriteString(panelStyle.Render(body))
		b.WriteString("\n")
	}
	_, err := fmt.Fprint(t.out, b.String())
	return err
}

// Ask prints prompt and blocks for one line. Cancelling ctx returns ctx.Err();
// the pending line, if any, is delivered to the next Ask.
func (t *Terminal) Ask(ctx context.Context, prompt string) (string, error) {
	t.mu.Lock()
	_, err := fmt.Fprintf(t.out, "%s\n> ", promptStyle.Render(prompt))
	t.mu.Unlock()
	if err != nil {
		return "", err
	}

	t.once.Do(func() { go t.readLoop() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

func (t *Terminal) readLoop() {
	for {
		line, err := t.in.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if err != nil && line == "" {
			t.lines <- readResult{err: err}
			close(t.lines)
			return
		}
		t.lines <- readResult{line: line}
	}
}
