package lead

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/leadrelay/internal/domain"
	"github.com/ashureev/leadrelay/internal/llm"
)

// FallbackReply is sent when the reply could not be generated.
const FallbackReply = "Sorry, I'm having trouble answering right now. Please try again in a moment."

const (
	replyTemperature = 0.2
	maxReplyWords    = 40
)

// Reply directives.
const (
	DirectiveClosing       = "CLOSING: Thank them. Confirm an expert will call."
	DirectiveVIPUrgent     = "VIP URGENT: 'I have your number. Team alerted.'"
	DirectiveVIPSales      = "VIP SALES: 'I have your info. Team will call you to finalize.'"
	DirectiveVIPConsultant = "VIP CONSULTANT: Answer questions helpfully. Do NOT ask for contact."
	DirectiveUrgent        = "URGENT: Ask for phone number immediately."
	DirectiveSales         = "SALES: 'To proceed/give price, I need your contact info.'"
	DirectiveDiscovery     = "DISCOVERY: Acknowledge project. Ask 1 key question."
	DirectiveAdvisor       = "ADVISOR: Give advice. Ask follow up."
	DirectiveGreeting      = "GREETING: Welcome them."
)

// Language is the reply language requested by the widget.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguagePersian Language = "fa"
)

// ParseLanguage maps a widget language code to a Language, defaulting to English.
func ParseLanguage(s string) Language {
	if Language(strings.ToLower(strings.TrimSpace(s))) == LanguagePersian {
		return LanguagePersian
	}
	return LanguageEnglish
}

func (l Language) instruction() string {
	if l == LanguagePersian {
		return "Answer in Persian (Farsi). Tone: Professional & Polite."
	}
	return "Answer in English. Tone: Professional."
}

// Directive picks the reply strategy for a turn.
func Directive(stage domain.Stage, profile domain.Profile, contactConfirmed bool) string {
	if contactConfirmed {
		return DirectiveClosing
	}

	if profile.Contact != "" {
		switch stage {
		case domain.StageUrgent:
			return DirectiveVIPUrgent
		case domain.StageSalesReady:
			return DirectiveVIPSales
		default:
			return DirectiveVIPConsultant
		}
	}

	switch stage {
	case domain.StageUrgent:
		return DirectiveUrgent
	case domain.StageSalesReady:
		return DirectiveSales
	case domain.StageDiscovery:
		return DirectiveDiscovery
	case domain.StageConsulting:
		return DirectiveAdvisor
	default:
		return DirectiveGreeting
	}
}

// ReplyRequest carries the inputs for rendering one reply.
type ReplyRequest struct {
	Session          domain.Session
	Message          string
	Stage            domain.Stage
	ContactConfirmed bool
	Language         Language
}

// Strategist renders reply directives into visitor-facing text.
type Strategist struct {
	gen       llm.Generator
	knowledge string
	company   string
	logger    *slog.Logger
}

// NewStrategist creates a Strategist. knowledge is the static company and
// services text the model may draw on.
func NewStrategist(gen llm.Generator, company, knowledge string, logger *slog.Logger) *Strategist {
	if logger == nil {
		logger = slog.Default()
	}
	return &Strategist{gen: gen, knowledge: knowledge, company: company, logger: logger}
}

// Respond generates the reply for req. It never fails; on any generation
// error it returns FallbackReply.
func (s *Strategist) Respond(ctx context.Context, req ReplyRequest) string {
	directive := Directive(req.Stage, req.Session.Profile, req.ContactConfirmed)

	system, err := s.systemPrompt(req, directive)
	if err != nil {
		s.logger.Error("Reply prompt build failed", "session_id", req.Session.Key, "error", err)
		return FallbackReply
	}

	reply, err := s.gen.Generate(ctx, llm.Prompt{
		System:      system,
		Turns:       req.Session.Transcript(domain.Turn{Role: domain.RoleUser, Content: req.Message}),
		Temperature: replyTemperature,
	})
	if err != nil {
		s.logger.Error("Reply generation failed", "session_id", req.Session.Key, "error", err)
		return FallbackReply
	}
	return strings.TrimSpace(reply)
}

func (s *Strategist) systemPrompt(req ReplyRequest, directive string) (string, error) {
	profile, err := json.Marshal(req.Session.Profile)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Role: Senior %s Consultant.\n", s.company)
	fmt.Fprintf(&b, "Profile: %s\n", profile)
	fmt.Fprintf(&b, "Goal: %s\n", directive)
	fmt.Fprintf(&b, "Info: %s\n\n", s.knowledge)
	b.WriteString("RULES:\n")
	fmt.Fprintf(&b, "1. %s\n", req.Language.instruction())
	fmt.Fprintf(&b, "2. MAX %d WORDS.\n", maxReplyWords)
	b.WriteString("3. NO TECH JARGON.\n")
	return b.String(), nil
}
