package contact

import "testing"

func TestIsReal(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"a@b.com", true},
		{"someone@example", false},
		{"12345", false},
		{"123-4567", true},
		{"+1 (555) 123-4567", true},
		{"call me maybe", false},
		{"۰۹۱۲۳۴۵۶۷۸۹", true},
	}
	for _, tt := range tests {
		if got := IsReal(tt.in); got != tt.want {
			t.Errorf("IsReal(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("+1 (555) 123-4567"); got != "15551234567" {
		t.Fatalf("Digits = %q", got)
	}
	if got := Digits("no digits"); got != "" {
		t.Fatalf("Digits = %q, want empty", got)
	}
}

func TestConfirmed(t *testing.T) {
	tests := []struct {
		name      string
		extracted string
		message   string
		want      bool
	}{
		{"phone typed by visitor", "555-1234", "call me at 555-1234", true},
		{"phone typed with different separators", "555-123-4567", "yes, call me at 555 123 4567", true},
		{"hallucinated phone", "555-1234", "please call me tomorrow", false},
		{"different digits", "555-1234", "my number is 555-9999", false},
		{"email verbatim", "jo@example.com", "mail jo@example.com thanks", true},
		{"email not in message", "jo@example.com", "mail me", false},
		{"not a contact", "12345", "12345", false},
		{"empty extraction", "", "call me at 555-1234", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confirmed(tt.extracted, tt.message); got != tt.want {
				t.Fatalf("Confirmed(%q, %q) = %v, want %v", tt.extracted, tt.message, got, tt.want)
			}
		})
	}
}
