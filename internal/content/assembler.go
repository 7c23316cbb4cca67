// Package content builds the prompt context for a content item.
package content

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pathwise/pathwise/internal/logger"
	"github.com/pathwise/pathwise/internal/retrieval"
	"github.com/pathwise/pathwise/internal/store"
)

// Config holds assembler tunables.
type Config struct {
	// MinLength is the context length, in characters, below which
	// retrieval supplements the item's own text.
	MinLength int

	// TopK is the number of passages requested from the retriever.
	TopK int

	// PromptBudget is the number of characters of context a prompt may
	// carry. See Truncate.
	PromptBudget int
}

// DefaultConfig returns the standard tunables.
func DefaultConfig() Config {
	return Config{
		MinLength:    100,
		TopK:         3,
		PromptBudget: 3000,
	}
}

// Assembler concatenates a content item's text, its slides and, for thin
// items, retrieved passages.
type Assembler struct {
	retriever retrieval.Retriever
	cfg       Config
	log       *logger.Logger
}

// NewAssembler creates an Assembler. A nil retriever disables the
// supplement step.
func NewAssembler(r retrieval.Retriever, cfg Config, log *logger.Logger) *Assembler {
	return &Assembler{retriever: r, cfg: cfg, log: logger.Or(log)}
}

// Config returns the assembler tunables.
func (a *Assembler) Config() Config {
	return a.cfg
}

// Assemble returns the full context blob for c. The blob is never
// truncated here; prompt builders call Truncate.
func (a *Assembler) Assemble(ctx context.Context, c *store.Content) (string, error) {
	var b strings.Builder
	b.WriteString(c.Body)
	for _, s := range c.Slides {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", s.Title, s.Content)
	}

	if utf8.RuneCountInString(b.String()) >= a.cfg.MinLength || a.retriever == nil {
		return b.String(), nil
	}

	passages, err := a.retriever.Retrieve(ctx, retrieval.Query{
		Text:   "concepts in " + c.Title,
		TopK:   a.cfg.TopK,
		Filter: map[string]string{"content_id": c.ID},
	})
	if err != nil {
		return "", fmt.Errorf("retrieve passages for content %q: %w", c.ID, err)
	}
	a.log.Debug("supplemented thin content", "content_id", c.ID, "passages", len(passages))

	for _, p := range passages {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

// Truncate cuts s to at most n characters, never splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
