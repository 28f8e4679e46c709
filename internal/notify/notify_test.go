package notify

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ashureev/leadrelay/internal/domain"
)

func TestFormatIncludesFieldsAndIcons(t *testing.T) {
	text := Format(Report{
		Title:     "HOT LEAD - NEW CONTACT",
		SessionID: "visitor-1",
		Profile:   domain.Profile{Contact: "555-123-4567", ProjectType: "website"},
		Transcript: []domain.Turn{
			{Role: domain.RoleUser, Content: "I need a website"},
			{Role: domain.RoleAssistant, Content: "What kind?"},
		},
	})

	for _, want := range []string{
		"🚨 **HOT LEAD - NEW CONTACT**",
		"👤 Name: Unknown",
		"📞 Contact: `555-123-4567`",
		"💼 Project: website",
		"👤 I need a website",
		"🤖 What kind?",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestFormatTruncatesLongReports(t *testing.T) {
	long := strings.Repeat("سلام ", 2000)
	text := Format(Report{
		Title:      "HOT LEAD - URGENT",
		Transcript: []domain.Turn{{Role: domain.RoleUser, Content: long}},
	})

	if !strings.HasSuffix(text, "...") {
		t.Fatal("expected ellipsis on truncated report")
	}
	if n := utf8.RuneCountInString(text); n != MaxReportLength+3 {
		t.Fatalf("truncated report has %d characters, want %d", n, MaxReportLength+3)
	}
	if !utf8.ValidString(text) {
		t.Fatal("truncation split a multi-byte character")
	}
}

func TestFormatShortReportUntouched(t *testing.T) {
	text := Format(Report{Title: "x"})
	if strings.HasSuffix(text, "...") {
		t.Fatal("short report should not be truncated")
	}
}
