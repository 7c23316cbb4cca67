// Package evaluate grades learner answers: multiple-choice and free-text
// answers through a text model, spoken answers through an audio-capable
// one.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pathwise/pathwise/internal/apperr"
	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/llm"
	"github.com/pathwise/pathwise/internal/llmjson"
	"github.com/pathwise/pathwise/internal/logger"
	"github.com/pathwise/pathwise/internal/store"
)

const (
	opAnswer = "evaluate.answer"
	opSpeech = "evaluate.speech"
)

var tracer = otel.Tracer("pathwise/evaluate")

// Mode selects how an answer is graded.
type Mode string

const (
	ModeStandard    Mode = "standard"
	ModeDescriptive Mode = "descriptive"
)

// Correctness levels reported in descriptive mode.
const (
	LevelCorrect   = "correct"
	LevelPartial   = "partially correct"
	LevelIncorrect = "incorrect"
	LevelUnknown   = "Unknown"
)

// Config holds the sampling settings of each grading mode.
type Config struct {
	FeedbackTemperature float64
	FeedbackMaxTokens   int

	GradingTemperature float64
	GradingMaxTokens   int

	SpeechTemperature float64
	SpeechMaxTokens   int

	// TempDir holds uploaded recordings while they are graded. Empty uses
	// the system default.
	TempDir string
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		FeedbackTemperature: 0.7,
		FeedbackMaxTokens:   500,
		GradingTemperature:  0.3,
		GradingMaxTokens:    500,
		SpeechTemperature:   0.2,
		SpeechMaxTokens:     500,
	}
}

// AnswerInput is a submitted answer to grade.
type AnswerInput struct {
	Question      string `validate:"required"`
	UserAnswer    string `validate:"required"`
	CorrectAnswer string `validate:"required"`

	// Context is extra text for the prompt. When empty and ContentID is
	// set, the content item's assembled text is used.
	Context   string
	ContentID string

	Mode     Mode `validate:"omitempty,oneof=standard descriptive"`
	Provider string
}

// Result is the outcome of grading one answer. It is never persisted.
type Result struct {
	Mode      Mode   `json:"mode"`
	IsCorrect bool   `json:"is_correct"`
	Level     string `json:"level_of_correctness,omitempty"`
	Feedback  string `json:"feedback"`

	// ParseError is set when the model's grading output could not be
	// decoded; Feedback then holds the raw text.
	ParseError bool `json:"parse_error,omitempty"`
}

// ContentReader resolves content items.
type ContentReader interface {
	Content(ctx context.Context, id string) (*store.Content, error)
}

// Providers resolves model providers by name.
type Providers interface {
	Provider(ctx context.Context, name string) (llm.Provider, error)
	Audio(ctx context.Context, name string) (llm.AudioProvider, error)
}

// Evaluator grades answers.
type Evaluator struct {
	contents    ContentReader
	assembler   *content.Assembler
	providers   Providers
	config      Config
	validate    *validator.Validate
	descriptive *llmjson.Parser
	speech      *llmjson.Parser
	log         *logger.Logger
}

// New creates an Evaluator.
func New(contents ContentReader, assembler *content.Assembler, providers Providers, cfg Config, log *logger.Logger) *Evaluator {
	return &Evaluator{
		contents:    contents,
		assembler:   assembler,
		providers:   providers,
		config:      cfg,
		validate:    validator.New(),
		descriptive: llmjson.New(DescriptiveSchema, llmjson.StripFences, llmjson.StripLiterals),
		speech:      llmjson.New(SpeechSchema),
		log:         logger.Or(log),
	}
}

// Evaluate grades a written answer. Malformed model output never fails the
// call in descriptive mode; provider faults and bad input do.
func (e *Evaluator) Evaluate(ctx context.Context, in AnswerInput) (_ *Result, err error) {
	if in.Mode == "" {
		in.Mode = ModeStandard
	}

	ctx, span := tracer.Start(ctx, opAnswer, trace.WithAttributes(
		attribute.String("evaluate.mode", string(in.Mode)),
		attribute.String("content.id", in.ContentID),
	))
	defer func() { endSpan(span, err) }()

	if err := e.check(opAnswer, in); err != nil {
		return nil, err
	}

	contextText, err := e.contextFor(ctx, in)
	if err != nil {
		return nil, err
	}

	provider, err := e.providers.Provider(ctx, in.Provider)
	if err != nil {
		return nil, apperr.FromProvider(opAnswer, err)
	}

	if in.Mode == ModeDescriptive {
		return e.descriptiveGrade(ctx, provider, in, contextText)
	}
	return e.standardGrade(ctx, provider, in, contextText)
}

// standardGrade asks the model for tutoring feedback only. Correctness is
// trimmed, case-insensitive string equality, so paraphrased answers are
// marked wrong.
func (e *Evaluator) standardGrade(ctx context.Context, p llm.Provider, in AnswerInput, contextText string) (*Result, error) {
	resp, err := p.Generate(llm.WithPurpose(ctx, llm.PurposeFeedback), llm.Request{
		System:      tutorSystemPrompt,
		Messages:    llm.UserPrompt(buildFeedbackMessage(in, contextText, e.promptBudget())),
		MaxTokens:   e.config.FeedbackMaxTokens,
		Temperature: e.config.FeedbackTemperature,
	})
	if err != nil {
		return nil, apperr.FromProvider(opAnswer, err)
	}

	return &Result{
		Mode:      ModeStandard,
		IsCorrect: matchesExactly(in.UserAnswer, in.CorrectAnswer),
		Feedback:  resp.Text,
	}, nil
}

func (e *Evaluator) descriptiveGrade(ctx context.Context, p llm.Provider, in AnswerInput, contextText string) (*Result, error) {
	resp, err := p.Generate(llm.WithPurpose(ctx, llm.PurposeDescriptive), llm.Request{
		System:      graderSystemPrompt,
		Messages:    llm.UserPrompt(buildGradingMessage(in, contextText, e.promptBudget())),
		Schema:      DescriptiveSchema,
		MaxTokens:   e.config.GradingMaxTokens,
		Temperature: e.config.GradingTemperature,
	})
	if err != nil {
		return nil, apperr.FromProvider(opAnswer, err)
	}

	return e.parseDescriptive(resp.Text), nil
}

// parseDescriptive turns grading output into a Result. It never fails.
func (e *Evaluator) parseDescriptive(raw string) *Result {
	var out struct {
		Level    string `json:"level_of_correctness"`
		Feedback string `json:"feedback"`
	}
	if err := e.descriptive.Decode(raw, &out); err != nil {
		e.log.Warn("unparseable descriptive grading", "raw", raw, "error", err)
		return &Result{
			Mode:       ModeDescriptive,
			Level:      LevelUnknown,
			Feedback:   raw,
			ParseError: true,
		}
	}

	level := normalizeLevel(out.Level)
	return &Result{
		Mode:      ModeDescriptive,
		IsCorrect: level == LevelCorrect,
		Level:     level,
		Feedback:  out.Feedback,
	}
}

// contextFor returns the prompt context for an answer.
func (e *Evaluator) contextFor(ctx context.Context, in AnswerInput) (string, error) {
	if in.Context != "" || in.ContentID == "" {
		return in.Context, nil
	}
	c, err := e.contents.Content(ctx, in.ContentID)
	if err != nil {
		return "", apperr.FromStore(opAnswer, err)
	}
	text, err := e.assembler.Assemble(ctx, c)
	if err != nil {
		return "", fmt.Errorf("%s: %w", opAnswer, err)
	}
	return text, nil
}

func (e *Evaluator) promptBudget() int {
	return e.assembler.Config().PromptBudget
}

// check validates struct tags and reports the first failure as a
// validation error.
func (e *Evaluator) check(op string, v any) error {
	err := e.validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		f := ve[0]
		if f.Tag() == "required" {
			return apperr.Errorf(apperr.KindValidation, op, "%s is required", fieldName(f.Field()))
		}
		return apperr.Errorf(apperr.KindValidation, op, "%s: invalid value %q", fieldName(f.Field()), fmt.Sprint(f.Value()))
	}
	return apperr.New(apperr.KindValidation, op, err)
}

// fieldName turns a Go field name into snake_case for messages.
func fieldName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func matchesExactly(answer, correct string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(strings.TrimSpace(correct))
}

// normalizeLevel folds case and separators so "Partially_Correct" reads as
// "partially correct". Unrecognized levels are returned trimmed.
func normalizeLevel(level string) string {
	l := strings.ToLower(strings.TrimSpace(level))
	l = strings.NewReplacer("_", " ", "-", " ").Replace(l)
	switch l {
	case LevelCorrect, LevelPartial, LevelIncorrect:
		return l
	}
	return strings.TrimSpace(level)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.KindOf(err)))
	}
	span.End()
}
