package llmjson

import (
	"encoding/json"
	"testing"

	"github.com/pathwise/pathwise/internal/llm"
)

func decodeAny(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad test JSON %q: %v", raw, err)
	}
	return v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"name":"Alice","age":10,"grade":"A"}`, false},
		{"valid without optional", `{"name":"Bob","age":8}`, false},
		{"missing required", `{"name":"Charlie"}`, true},
		{"wrong type", `{"name":"Dave","age":"ten"}`, true},
		{"invalid enum", `{"name":"Eve","age":9,"grade":"D"}`, true},
		{"negative minimum", `{"name":"Finn","age":-1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(testSchema(), decodeAny(t, tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NestedObjects(t *testing.T) {
	schema := &llm.Schema{
		Name:        "test-nested",
		Description: "Nested test",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"student": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
					},
					"required": []any{"name"},
				},
				"scores": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"student", "scores"},
		},
	}

	if err := validate(schema, decodeAny(t, `{"student":{"name":"Alice"},"scores":[90,85,92]}`)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := validate(schema, decodeAny(t, `{"student":{"name":"Alice"},"scores":["not","ints"]}`)); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}
