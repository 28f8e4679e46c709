// Package contact recognizes visitor-supplied contact handles.
package contact

import (
	"strings"
	"unicode"
)

const (
	minPhoneDigits = 7
	// Extracted values with more digits than this are matched on digits alone,
	// so "555-123-4567" confirms against "555 123 4567".
	digitMatchThreshold = 5
)

// IsReal reports whether value looks like an email address or a phone number.
func IsReal(value string) bool {
	if value == "" {
		return false
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return true
	}
	return len(Digits(value)) >= minPhoneDigits
}

// Digits returns only the decimal digits in s. Non-ASCII digits such as
// Persian numerals are kept as written.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Confirmed reports whether extracted is a real contact that the visitor actually
// typed in message. It guards against the model inventing a contact.
func Confirmed(extracted, message string) bool {
	if !IsReal(extracted) {
		return false
	}
	if d := Digits(extracted); len(d) > digitMatchThreshold {
		return strings.Contains(Digits(message), d)
	}
	return strings.Contains(message, extracted)
}
