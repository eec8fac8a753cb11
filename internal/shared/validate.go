package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
)

// ValidationError converts a validator error into the shared taxonomy,
// collapsing field errors into one readable message.
func ValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(parts, ", "))
	}
	return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
}

// Invalidf builds a validation error with a formatted message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", httpx.ErrValidation, fmt.Sprintf(format, args...))
}
