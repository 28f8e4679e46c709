// Package lead implements lead qualification: stage classification, alert
// decisions and reply strategy.
package lead

import "strings"

// AgreementTokens are the affirmative words that mark a visitor as agreeing to
// be contacted. Matching is a case-folded substring test, so "ok" also matches
// "okay" and "call" matches "call me". This table is configuration data.
var AgreementTokens = []string{
	"bale", "yes", "ok", "please", "call",
	"بله", "باشه", "حتما", "تماس",
}

// IsAgreementPhrase reports whether message contains any agreement token.
func IsAgreementPhrase(message string) bool {
	folded := strings.ToLower(message)
	for _, tok := range AgreementTokens {
		if strings.Contains(folded, tok) {
			return true
		}
	}
	return false
}
