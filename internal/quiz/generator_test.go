package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pathwise/pathwise/internal/apperr"
	"github.com/pathwise/pathwise/internal/content"
	"github.com/pathwise/pathwise/internal/llm"
	"github.com/pathwise/pathwise/internal/retrieval"
	"github.com/pathwise/pathwise/internal/store"
)

type fakeContents map[string]*store.Content

func (f fakeContents) Content(_ context.Context, id string) (*store.Content, error) {
	c, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("content %q: %w", id, store.ErrNotFound)
	}
	return c, nil
}

func testContents() fakeContents {
	return fakeContents{
		"c1": {
			ID:    "c1",
			Title: "Photosynthesis",
			Body:  strings.Repeat("Plants turn light, water and carbon dioxide into glucose. ", 4),
		},
		"long": {
			ID:    "long",
			Title: "Long read",
			Body:  strings.Repeat("x", 5000),
		},
	}
}

const validQuizJSON = `{
	"questions": [
		{
			"id": 1,
			"question": "What do plants produce?",
			"options": ["Glucose", "Salt", "Iron", "Sand"],
			"correct_answer": "Glucose",
			"explanation": "Photosynthesis produces glucose."
		}
	]
}`

func newTestGenerator(mock *llm.MockProvider) *Generator {
	reg := llm.NewRegistry(llm.Config{Provider: llm.ProviderMock}, llm.RegistryOptions{Mock: mock})
	asm := content.NewAssembler(nil, content.DefaultConfig(), nil)
	return New(testContents(), asm, reg, DefaultConfig(), nil)
}

func TestGenerate_BareJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: validQuizJSON})
	gen := newTestGenerator(mock)

	q, err := gen.Generate(context.Background(), GenerateInput{ContentID: "c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(q.Questions))
	}
	if q.Questions[0].CorrectAnswer != "Glucose" {
		t.Errorf("unexpected answer: %q", q.Questions[0].CorrectAnswer)
	}
	if len(q.Questions[0].Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(q.Questions[0].Options))
	}
}

func TestGenerate_FencedJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "```json\n" + validQuizJSON + "\n```"})
	gen := newTestGenerator(mock)

	q, err := gen.Generate(context.Background(), GenerateInput{ContentID: "c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Questions[0].Question != "What do plants produce?" {
		t.Errorf("unexpected question: %q", q.Questions[0].Question)
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: validQuizJSON})
	gen := newTestGenerator(mock)

	if _, err := gen.Generate(context.Background(), GenerateInput{ContentID: "c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(mock.Calls))
	}
	req := mock.Calls[0]
	if req.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", req.Temperature)
	}
	if req.MaxTokens != 2000 {
		t.Errorf("max tokens = %d, want 2000", req.MaxTokens)
	}
	if req.Schema != QuizSchema {
		t.Error("expected quiz schema on request")
	}
	msg := req.Messages[0].Content
	if !strings.Contains(msg, "intermediate level quiz with 5 multiple-choice questions") {
		t.Errorf("defaults missing from prompt: %q", msg)
	}
	if !strings.Contains(msg, "Plants turn light") {
		t.Error("content text missing from prompt")
	}
}

func TestGenerate_ContextTruncated(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: validQuizJSON})
	gen := newTestGenerator(mock)

	_, err := gen.Generate(context.Background(), GenerateInput{
		ContentID:    "long",
		NumQuestions: 3,
		Difficulty:   "beginner",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := mock.Calls[0].Messages[0].Content
	if strings.Contains(msg, strings.Repeat("x", 3001)) {
		t.Error("context was not truncated to 3000 characters")
	}
	if !strings.Contains(msg, strings.Repeat("x", 3000)) {
		t.Error("expected 3000 characters of context")
	}
	if !strings.Contains(msg, "beginner level quiz with 3") {
		t.Errorf("caller settings ignored: %q", msg)
	}
}

func TestGenerate_ContentNotFound(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := newTestGenerator(mock)

	_, err := gen.Generate(context.Background(), GenerateInput{ContentID: "missing"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Error("provider must not be called for missing content")
	}
}

func TestGenerate_ParseFailureCarriesRaw(t *testing.T) {
	raw := "Sure! Here is your quiz: questions one and two."
	mock := llm.NewMockProvider(llm.MockResponse{Text: raw})
	gen := newTestGenerator(mock)

	_, err := gen.Generate(context.Background(), GenerateInput{ContentID: "c1"})
	if !apperr.Is(err, apperr.KindParseFailure) {
		t.Fatalf("expected parse_failure, got %v", err)
	}
	if apperr.RawOf(err) != raw {
		t.Errorf("raw = %q, want %q", apperr.RawOf(err), raw)
	}
}

func TestGenerate_SchemaViolationIsParseFailure(t *testing.T) {
	bad := `{"questions": [{"id": 1, "question": "Q", "options": ["A", "B"], "correct_answer": "A", "explanation": "E"}]}`
	mock := llm.NewMockProvider(llm.MockResponse{Text: bad})
	gen := newTestGenerator(mock)

	_, err := gen.Generate(context.Background(), GenerateInput{ContentID: "c1"})
	if !apperr.Is(err, apperr.KindParseFailure) {
		t.Fatalf("expected parse_failure for 2 options, got %v", err)
	}
}

func TestGenerate_ProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"unavailable", &llm.ErrProviderUnavailable{}, apperr.KindProviderFault},
		{"timeout", &llm.ErrTimeout{}, apperr.KindProviderTimeout},
		{"missing key", &llm.ErrMissingCredential{Provider: "openai"}, apperr.KindProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Err: tt.err})
			gen := newTestGenerator(mock)

			_, err := gen.Generate(context.Background(), GenerateInput{ContentID: "c1"})
			if got := apperr.KindOf(err); got != tt.want {
				t.Fatalf("kind = %q, want %q (%v)", got, tt.want, err)
			}
		})
	}
}

func TestGenerate_UnconfiguredProvider(t *testing.T) {
	gen := newTestGenerator(llm.NewMockProvider())

	_, err := gen.Generate(context.Background(), GenerateInput{ContentID: "c1", Provider: "anthropic"})
	if !apperr.Is(err, apperr.KindProviderUnavailable) {
		t.Fatalf("expected provider_unavailable, got %v", err)
	}

	_, err = gen.Generate(context.Background(), GenerateInput{ContentID: "c1", Provider: "nope"})
	if !apperr.Is(err, apperr.KindProviderUnavailable) {
		t.Fatalf("expected provider_unavailable for unknown name, got %v", err)
	}
}

func TestBuildUserMessage(t *testing.T) {
	msg := buildUserMessage("Cells", "Cells are the unit of life.", GenerateInput{NumQuestions: 2, Difficulty: "advanced"}, 3000)

	for _, want := range []string{"advanced level quiz with 2", "Topic: Cells", "Cells are the unit of life.", `"correct_answer"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

type brokenContents struct{ err error }

func (b brokenContents) Content(context.Context, string) (*store.Content, error) {
	return nil, b.err
}

type brokenRetriever struct{ err error }

func (b brokenRetriever) Retrieve(context.Context, retrieval.Query) ([]retrieval.Passage, error) {
	return nil, b.err
}

func TestGenerate_StorageFaultsAreNotProviderFaults(t *testing.T) {
	dbErr := errors.New("database is locked")
	reg := func(mock *llm.MockProvider) *llm.Registry {
		return llm.NewRegistry(llm.Config{Provider: llm.ProviderMock}, llm.RegistryOptions{Mock: mock})
	}

	tests := []struct {
		name      string
		contents  ContentReader
		retriever retrieval.Retriever
		contentID string
	}{
		{"content lookup", brokenContents{err: dbErr}, nil, "c1"},
		{"retrieval", fakeContents{"thin": {ID: "thin", Title: "Thin"}}, brokenRetriever{err: dbErr}, "thin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Text: validQuizJSON})
			asm := content.NewAssembler(tt.retriever, content.DefaultConfig(), nil)
			gen := New(tt.contents, asm, reg(mock), DefaultConfig(), nil)

			_, err := gen.Generate(context.Background(), GenerateInput{ContentID: tt.contentID})
			if !errors.Is(err, dbErr) {
				t.Fatalf("expected the storage error, got %v", err)
			}
			if kind := apperr.KindOf(err); kind != "" {
				t.Fatalf("storage fault classified as %q", kind)
			}
			if mock.CallCount() != 0 {
				t.Fatalf("provider called %d times", mock.CallCount())
			}
		})
	}
}
