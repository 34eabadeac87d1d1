// Package confirm implements the operator confirmation sub-protocol: present
// information, block for a single-character answer (s, n or e) and re-prompt on
// anything else.
package confirm

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"dtefiler/internal/logging"
)

// Channel is a blocking request/response line to a human operator.
type Channel interface {
	// Show presents information without waiting for an answer.
	Show(ctx context.Context, title, body string) error
	// Ask blocks until the operator answers. There is no timeout.
	Ask(ctx context.Context, prompt string) (string, error)
}

// Answer is a normalized confirmation answer.
type Answer rune

const (
	Yes     Answer = 's'
	No      Answer = 'n'
	Exit    Answer = 'e'
	Invalid Answer = 0
)

func (a Answer) String() string {
	switch a {
	case Yes:
		return "si"
	case No:
		return "no"
	case Exit:
		return "exit"
	default:
		return "invalid"
	}
}

// Normalize lower-cases raw input and keeps its first character.
func Normalize(raw string) Answer {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Invalid
	}
	switch r := Answer(unicode.ToLower([]rune(raw)[0])); r {
	case Yes, No, Exit:
		return r
	default:
		return Invalid
	}
}

// DefaultQuestion is the review question asked at every gate.
const DefaultQuestion = "¿ Son correctos los datos ? [ s = SI / n = NO / e = EXIT ]"

// Prompter runs the confirmation sub-protocol over a Channel.
type Prompter struct {
	ch Channel
}

// NewPrompter creates a Prompter.
func NewPrompter(ch Channel) *Prompter {
	return &Prompter{ch: ch}
}

// Channel returns the underlying channel.
func (p *Prompter) Channel() Channel {
	return p.ch
}

// Show forwards to the channel.
func (p *Prompter) Show(ctx context.Context, title, body string) error {
	return p.ch.Show(ctx, title, body)
}

// Confirm shows title/body (when title is set), then asks question until the
// answer normalizes to s, n or e. Invalid input re-shows the information.
func (p *Prompter) Confirm(ctx context.Context, title, body, question string) (Answer, error) {
	if question == "" {
		question = DefaultQuestion
	}
	if title != "" {
		if err := p.ch.Show(ctx, title, body); err != nil {
			return Invalid, err
		}
	}
	for {
		raw, err := p.ch.Ask(ctx, question)
		if err != nil {
			return Invalid, err
		}
		if a := Normalize(raw); a != Invalid {
			logging.Confirm("%q answered %s", title, a)
			return a, nil
		}
		if err := p.ch.Show(ctx, "Opción no válida. Prueba de nuevo.", body); err != nil {
			return Invalid, err
		}
	}
}

// Ask asks question once and normalizes the answer without re-prompting.
func (p *Prompter) Ask(ctx context.Context, question string) (Answer, error) {
	if question == "" {
		question = DefaultQuestion
	}
	raw, err := p.ch.Ask(ctx, question)
	if err != nil {
		return Invalid, err
	}
	a := Normalize(raw)
	logging.Confirm("%q answered %s", question, a)
	return a, nil
}

// AskNumber asks until the answer contains at least one digit and returns the
// digits as a number. Non-digit characters are dropped.
func (p *Prompter) AskNumber(ctx context.Context, prompt string) (int64, error) {
	for {
		raw, err := p.ch.Ask(ctx, prompt)
		if err != nil {
			return 0, err
		}
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, raw)
		if digits != "" {
			if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
				return n, nil
			}
		}
		if err := p.ch.Show(ctx, "Debes ingresar un número.", ""); err != nil {
			return 0, err
		}
	}
}
