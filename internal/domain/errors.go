package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Render failures. Each one is terminal for the current render only.
var (
	ErrEmptyResult           = errors.New("no data available")
	ErrMissingRequiredField  = errors.New("required fields not found")
	ErrNoValidRows           = errors.New("no rows with valid coordinates")
	ErrMapSurfaceUnavailable = errors.New("map container not found")
)

// MissingFieldError reports unresolved required columns along with the
// columns that were available, so the user can fix the search.
type MissingFieldError struct {
	Missing   []string
	Available []string
}

func (e *MissingFieldError) Error() string {
	available := "none"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("%s: %s. Please include latitude and longitude fields (available columns: %s)",
		ErrMissingRequiredField, strings.Join(e.Missing, ", "), available)
}

// Is lets errors.Is(err, ErrMissingRequiredField) match.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// ErrorKind maps a render error to a stable label for metrics and API bodies.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, ErrMissingRequiredField):
		return "missing_required_field"
	case errors.Is(err, ErrNoValidRows):
		return "no_valid_rows"
	case errors.Is(err, ErrMapSurfaceUnavailable):
		return "map_surface_unavailable"
	default:
		return "unknown"
	}
}
