// Package llmjson extracts JSON from free-form model output.
//
// Model text is passed through an ordered chain of strategies. Each
// strategy rewrites the raw text into a candidate; the first candidate that
// decodes (and validates, when a schema is set) wins. When none does the
// caller gets a *ParseError carrying the raw text.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pathwise/pathwise/internal/llm"
)

// ParseError reports model output that no strategy could decode.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Strategy rewrites raw model text into a JSON candidate. Apply returns
// false when the strategy does not match the input.
type Strategy struct {
	Name  string
	Apply func(raw string) (string, bool)
}

// StripFences trims the text and removes a leading ```json or ``` fence
// and a trailing ``` fence.
var StripFences = Strategy{
	Name: "strip-fences",
	Apply: func(raw string) (string, bool) {
		return Clean(raw), true
	},
}

// StripLiterals handles JSON wrapped in prose such as `json {...}`: when the
// trimmed text does not open with a brace it removes every "json" and "```"
// literal and every newline.
var StripLiterals = Strategy{
	Name: "strip-literals",
	Apply: func(raw string) (string, bool) {
		t := strings.TrimSpace(raw)
		if strings.HasPrefix(t, "{") {
			return "", false
		}
		t = strings.NewReplacer("json", "", "```", "", "\r", "", "\n", "").Replace(t)
		return strings.TrimSpace(t), true
	},
}

// Clean is the fence-stripping primitive shared by every caller.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Parser decodes model output with an ordered strategy chain and an
// optional JSON schema.
type Parser struct {
	strategies []Strategy
	schema     *llm.Schema
}

// New returns a Parser. With no strategies it uses StripFences alone.
func New(schema *llm.Schema, strategies ...Strategy) *Parser {
	if len(strategies) == 0 {
		strategies = []Strategy{StripFences}
	}
	return &Parser{strategies: strategies, schema: schema}
}

// Decode unmarshals the first candidate that parses (and validates) into v.
// All failures are reported as *ParseError.
func (p *Parser) Decode(raw string, v any) error {
	var errs []error
	for _, s := range p.strategies {
		candidate, ok := s.Apply(raw)
		if !ok {
			continue
		}
		if err := p.decodeCandidate(candidate, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		return nil
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no strategy matched"))
	}
	return &ParseError{Raw: raw, Err: errors.Join(errs...)}
}

func (p *Parser) decodeCandidate(candidate string, v any) error {
	if candidate == "" {
		return errors.New("empty text")
	}
	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if p.schema != nil {
		if err := validate(p.schema, parsed); err != nil {
			return err
		}
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Decode parses raw with StripFences and no schema.
func Decode(raw string, v any) error {
	return New(nil).Decode(raw, v)
}
