package lead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/leadrelay/internal/contact"
	"github.com/ashureev/leadrelay/internal/domain"
	"github.com/ashureev/leadrelay/internal/llm"
)

const (
	classifierHistoryTurns = 6
	classifierTemperature  = 0.1
)

var errNoJSONObject = errors.New("no JSON object in classifier output")

// Classification is the per-turn result of the stage classifier.
type Classification struct {
	Stage            domain.Stage
	Name             string
	Contact          string
	ProjectType      string
	ContactConfirmed bool
}

// Apply folds the classification into p. Contact is only replaced by a
// confirmed contact and is never cleared.
func (c Classification) Apply(p *domain.Profile) {
	if c.Name != "" {
		p.Name = c.Name
	}
	if c.ProjectType != "" {
		p.ProjectType = c.ProjectType
	}
	if c.ContactConfirmed {
		p.Contact = c.Contact
	}
}

// Classifier estimates a visitor's stage and extracts profile fields.
type Classifier struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewClassifier creates a classifier backed by gen.
func NewClassifier(gen llm.Generator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{gen: gen, logger: logger}
}

// Classify asks the model for the stage of sess given the latest message. It
// never fails: any model or parse error yields a GREETING with nothing extracted.
func (c *Classifier) Classify(ctx context.Context, sess domain.Session, message string) Classification {
	prompt, err := classifierPrompt(sess, message)
	if err != nil {
		c.logger.Error("Classifier prompt build failed", "session_id", sess.Key, "error", err)
		return Classification{Stage: domain.StageGreeting}
	}

	raw, err := c.gen.Generate(ctx, llm.Prompt{
		System:      prompt,
		JSON:        true,
		Temperature: classifierTemperature,
	})
	if err != nil {
		c.logger.Error("Analysis failed", "session_id", sess.Key, "error", err)
		return Classification{Stage: domain.StageGreeting}
	}

	out, err := parseClassifierOutput(raw)
	if err != nil {
		c.logger.Error("Analysis output unparseable", "session_id", sess.Key, "error", err)
		return Classification{Stage: domain.StageGreeting}
	}

	result := Classification{
		Stage:       domain.ParseStage(string(out.Stage)),
		Name:        string(out.Name),
		Contact:     string(out.Contact),
		ProjectType: string(out.ProjectType),
	}
	result.ContactConfirmed = contact.Confirmed(result.Contact, message)
	if result.Contact != "" && !result.ContactConfirmed {
		c.logger.Info("Discarding unconfirmed contact", "session_id", sess.Key)
	}
	return result
}

func classifierPrompt(sess domain.Session, message string) (string, error) {
	history, err := json.Marshal(sess.RecentTurns(classifierHistoryTurns))
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	profile, err := json.Marshal(sess.Profile)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	return fmt.Sprintf(classifierTemplate, history, message, profile), nil
}

const classifierTemplate = `Role: Strategic sales analyst.
Context: %s
Current Msg: %q
Profile: %s

Task: Determine STAGE and extract data.

STAGES:
- "GREETING": Hello, Hi.
- "DISCOVERY": The user wants a service ("I need a site") but there is no deal yet.
- "CONSULTING": The user asks technical questions.
- "SALES_READY": The user says "Yes", "I want to buy", "Call me", "Start now", "Price?".
- "URGENT": The user says "Urgent", "ASAP".

CRITICAL RULES:
1. "I want a website" = DISCOVERY.
2. "Yes", "Ok", "Bale" or "بله" = SALES_READY.
3. Contact extraction must be exact. Copy the phone number or email exactly as the user wrote it. Never invent one.
4. Use an empty string for anything you do not know.

Output JSON: {"stage": "...", "name": "...", "contact": "...", "project_type": "..."}`

type classifierOutput struct {
	Stage       looseString `json:"stage"`
	Name        looseString `json:"name"`
	Contact     looseString `json:"contact"`
	ProjectType looseString `json:"project_type"`
}

// looseString accepts strings, numbers and null. Models sometimes return a
// phone number as a JSON number.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = looseString(cleanField(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*l = looseString(n.String())
		return nil
	}
	*l = ""
	return nil
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "...", "null", "none", "n/a", "unknown":
		return ""
	}
	return s
}

func parseClassifierOutput(raw string) (classifierOutput, error) {
	var out classifierOutput
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return out, errNoJSONObject
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return out, fmt.Errorf("decode classifier output: %w", err)
	}
	return out, nil
}
