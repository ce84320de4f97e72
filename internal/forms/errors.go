package forms

import (
	"errors"
	"fmt"
)

var errEmptyInputCode = errors.New("every input needs a non-empty inputcode")

func duplicateInputCodeError(code string) error {
	return fmt.Errorf("duplicate inputcode %q: input codes must be unique across all groups", code)
}
