package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrRequired = errors.New("field is required")
	ErrTooLong  = errors.New("field is too long")
)

// TextValidator checks a required free text field. Blank strings count as
// missing.
func TextValidator(s string, maxLen int) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}

	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return ErrTooLong
	}

	return nil
}
