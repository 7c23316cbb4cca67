// Package quiz generates multiple-choice quizzes from course content.
package quiz

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pathwise/pathwise/internal/apperr"
	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/llm"
	"github.com/pathwise/pathwise/internal/llmjson"
	"github.com/pathwise/pathwise/internal/logger"
	"github.com/pathwise/pathwise/internal/store"
)

const opGenerate = "quiz.generate"

var tracer = otel.Tracer("pathwise/quiz")

// Config controls quiz generation.
type Config struct {
	// NumQuestions is used when the caller passes zero.
	NumQuestions int

	// Difficulty is used when the caller passes an empty string.
	Difficulty string

	// MaxTokens is the token budget for the model response.
	MaxTokens int

	// Temperature is kept low for consistent formatting.
	Temperature float64
}

// DefaultConfig returns the standard quiz settings.
func DefaultConfig() Config {
	return Config{
		NumQuestions: 5,
		Difficulty:   "intermediate",
		MaxTokens:    2000,
		Temperature:  0.3,
	}
}

// Question is one multiple-choice question.
type Question struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Quiz is a generated quiz. It is never persisted.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// GenerateInput selects the content and shape of a quiz.
type GenerateInput struct {
	ContentID    string
	NumQuestions int
	Difficulty   string

	// Provider names the model provider; empty selects the default.
	Provider string
}

// ContentReader resolves content items.
type ContentReader interface {
	Content(ctx context.Context, id string) (*store.Content, error)
}

// Providers resolves a model provider by name.
type Providers interface {
	Provider(ctx context.Context, name string) (llm.Provider, error)
}

// Generator builds quizzes from content with a language model.
type Generator struct {
	contents  ContentReader
	assembler *content.Assembler
	providers Providers
	parser    *llmjson.Parser
	config    Config
	log       *logger.Logger
}

// New creates a Generator.
func New(contents ContentReader, assembler *content.Assembler, providers Providers, cfg Config, log *logger.Logger) *Generator {
	return &Generator{
		contents:  contents,
		assembler: assembler,
		providers: providers,
		parser:    llmjson.New(QuizSchema),
		config:    cfg,
		log:       logger.Or(log),
	}
}

// Generate produces a quiz for the content item in.ContentID. Model failures
// and missing content are *apperr.Error, and parse failures carry the raw
// model text. Storage and retrieval faults are returned wrapped, unclassified.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (_ *Quiz, err error) {
	ctx, span := tracer.Start(ctx, opGenerate)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(apperr.KindOf(err)))
		}
		span.End()
	}()

	if in.NumQuestions <= 0 {
		in.NumQuestions = g.config.NumQuestions
	}
	if in.Difficulty == "" {
		in.Difficulty = g.config.Difficulty
	}
	span.SetAttributes(
		attribute.String("content.id", in.ContentID),
		attribute.Int("quiz.questions", in.NumQuestions),
		attribute.String("quiz.difficulty", in.Difficulty),
	)

	c, err := g.contents.Content(ctx, in.ContentID)
	if err != nil {
		return nil, apperr.FromStore(opGenerate, err)
	}

	contextText, err := g.assembler.Assemble(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opGenerate, err)
	}

	provider, err := g.providers.Provider(ctx, in.Provider)
	if err != nil {
		return nil, apperr.FromProvider(opGenerate, err)
	}

	req := llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserPrompt(buildUserMessage(c.Title, contextText, in, g.assembler.Config().PromptBudget)),
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := provider.Generate(llm.WithPurpose(ctx, llm.PurposeQuiz), req)
	if err != nil {
		return nil, apperr.FromProvider(opGenerate, err)
	}

	var q Quiz
	if err := g.parser.Decode(resp.Text, &q); err != nil {
		g.log.Error("failed to decode quiz JSON", "content_id", in.ContentID, "raw", resp.Text, "error", err)
		return nil, apperr.FromProvider(opGenerate, err)
	}

	g.log.Debug("quiz generated", "content_id", in.ContentID, "questions", len(q.Questions), "model", resp.Model)
	return &q, nil
}
