package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pathwise/pathwise/internal/apperr"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// explain adds a hint for classified engine errors and prints any raw
// model output to stderr.
func explain(err error) error {
	if raw := apperr.RawOf(err); raw != "" {
		fmt.Fprintln(os.Stderr, "raw model output:")
		fmt.Fprintln(os.Stderr, raw)
	}
	switch apperr.KindOf(err) {
	case apperr.KindProviderUnavailable:
		return fmt.Errorf("%w\n\nConfigure the provider (see --provider and the *_API_KEY variables)", err)
	case apperr.KindProviderTimeout:
		return fmt.Errorf("%w\n\nRaise PATHWISE_LLM_TIMEOUT or try a faster model", err)
	}
	return err
}
