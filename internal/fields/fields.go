// Package fields validates and normalizes candidate profile attributes typed
// into the chat or extracted from a résumé.
package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/interview-assistant/internal/types"
)

var (
	emailPattern      = regexp.MustCompile(`[^\s@]+@(?:[^\s@.]+\.)+[A-Za-z]{2,}`)
	phonePattern      = regexp.MustCompile(`(\+\d{1,3}[- ]?)?(\d{3}[- ]?\d{3}[- ]?\d{4}|\d{10,15})`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// minNameLength is measured in runes.
const minNameLength = 3

// Validate normalizes raw for the named field. The boolean is false when the
// value is rejected; rejection is a re-prompt signal, not an error.
func Validate(field, raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	switch field {
	case types.FieldEmail:
		return validateEmail(v)
	case types.FieldPhone:
		return validatePhone(v)
	case types.FieldName:
		if utf8.RuneCountInString(v) >= minNameLength {
			return v, true
		}
		return "", false
	default:
		if v == "" {
			return "", false
		}
		return v, true
	}
}

// validateEmail returns the trimmed input unchanged when it contains an
// address-shaped substring and exactly one '@'.
func validateEmail(v string) (string, bool) {
	if strings.Count(v, "@") != 1 || !emailPattern.MatchString(v) {
		return "", false
	}
	return v, true
}

// validatePhone returns the matched phone substring after collapsing
// whitespace runs.
func validatePhone(v string) (string, bool) {
	collapsed := whitespacePattern.ReplaceAllString(v, " ")
	m := phonePattern.FindString(collapsed)
	if m == "" {
		return "", false
	}
	return m, true
}

// PromptFor returns the bot prompt asking for a field.
func PromptFor(field string) string {
	switch field {
	case types.FieldName:
		return "What is your full name?"
	case types.FieldEmail:
		return "Please share your email address."
	case types.FieldPhone:
		return "Please share your phone number (with country code if applicable)."
	default:
		return "Please provide the information."
	}
}

// FindPhone returns the first phone-shaped substring of text after collapsing
// whitespace, or "".
func FindPhone(text string) string {
	return phonePattern.FindString(whitespacePattern.ReplaceAllString(text, " "))
}
