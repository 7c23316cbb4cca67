package apperr

import (
	"errors"
	"fmt"

	"github.com/pathwise/pathwise/internal/store"
)

// FromStore classifies a storage error. Missing rows become NotFound;
// anything else stays a plain wrapped infrastructure error.
func FromStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return New(KindNotFound, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
