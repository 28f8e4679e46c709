// Package notify delivers lead reports to a human operator.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ashureev/leadrelay/internal/domain"
)

// MaxReportLength is the longest report text sent, in characters.
const MaxReportLength = 4000

// ErrNotConfigured is returned when the notifier has no credentials.
var ErrNotConfigured = errors.New("notifier not configured")

// Report is an operator notification about one session.
type Report struct {
	Title      string
	SessionID  string
	Profile    domain.Profile
	Transcript []domain.Turn
}

// Notifier sends a report to an operator.
type Notifier interface {
	Notify(ctx context.Context, r Report) error
}

// Format renders the report as chat text, truncated to MaxReportLength
// characters with a trailing "..." when longer.
func Format(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 **%s**\n", r.Title)
	fmt.Fprintf(&b, "👤 Name: %s\n", orDefault(r.Profile.Name, "Unknown"))
	fmt.Fprintf(&b, "📞 Contact: `%s`\n", orDefault(r.Profile.Contact, "N/A"))
	fmt.Fprintf(&b, "💼 Project: %s\n", orDefault(r.Profile.ProjectType, "N/A"))
	if r.SessionID != "" {
		fmt.Fprintf(&b, "🔑 Session: %s\n", r.SessionID)
	}
	b.WriteString("----------------------------\n")
	b.WriteString("📜 **TRANSCRIPT:**\n\n")
	for _, t := range r.Transcript {
		icon := "🤖"
		if t.Role == domain.RoleUser {
			icon = "👤"
		}
		fmt.Fprintf(&b, "%s %s\n", icon, t.Content)
	}
	return truncate(b.String(), MaxReportLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
