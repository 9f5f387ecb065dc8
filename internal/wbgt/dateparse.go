package wbgt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateInput is returned when user input matches neither accepted shape.
var ErrInvalidDateInput = errors.New("invalid date input")

const dateLayout = "2006-01-02"

// datetimeLayouts cover ISO-8601 with an explicit offset or "Z", plus the
// bare local form users type by hand.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDateInput validates a trimmed user-supplied date or datetime string.
// A string containing "T" must parse as ISO-8601; anything else must match
// YYYY-MM-DD exactly. On success the input is returned verbatim, since it is
// passed through unchanged as the upstream query parameter.
func ParseDateInput(s string) (string, error) {
	if strings.Contains(s, "T") {
		for _, layout := range datetimeLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return s, nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidDateInput, s)
	}

	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateInput, s)
	}
	return s, nil
}
