package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ashureev/leadrelay/internal/domain"
	"github.com/ashureev/leadrelay/internal/lead"
	"github.com/ashureev/leadrelay/internal/llm"
	"github.com/ashureev/leadrelay/internal/notify"
	"github.com/ashureev/leadrelay/internal/session"
	"github.com/ashureev/leadrelay/internal/store"
)

// scriptedGenerator answers classifier prompts (JSON mode) from a queue and
// reply prompts with a fixed text, recording every reply system prompt.
type scriptedGenerator struct {
	mu            sync.Mutex
	classifier    []string
	reply         string
	replyErr      error
	replyPrompts  []llm.Prompt
	classifyCalls int
	panicWith     any
}

func (g *scriptedGenerator) Generate(_ context.Context, p llm.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.panicWith != nil {
		panic(g.panicWith)
	}
	if p.JSON {
		g.classifyCalls++
		if len(g.classifier) == 0 {
			return "", errors.New("no scripted classification")
		}
		out := g.classifier[0]
		g.classifier = g.classifier[1:]
		return out, nil
	}
	g.replyPrompts = append(g.replyPrompts, p)
	if g.replyErr != nil {
		return "", g.replyErr
	}
	return g.reply, nil
}

func (g *scriptedGenerator) script(outputs ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.classifier = append(g.classifier, outputs...)
}

func (g *scriptedGenerator) lastReplyPrompt() llm.Prompt {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.replyPrompts[len(g.replyPrompts)-1]
}

type fakeNotifier struct {
	mu      sync.Mutex
	err     error
	reports []notify.Report
}

func (n *fakeNotifier) Notify(_ context.Context, r notify.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, r)
	return n.err
}

func (n *fakeNotifier) sent() []notify.Report {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Report(nil), n.reports...)
}

type fakeLedger struct {
	mu      sync.Mutex
	records []*domain.AlertRecord
}

func (l *fakeLedger) RecordAlert(_ context.Context, rec *domain.AlertRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

func (l *fakeLedger) ListAlerts(context.Context, store.ListParams) ([]*domain.AlertRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.AlertRecord(nil), l.records...), nil
}

func (l *fakeLedger) DeleteAlertsBefore(context.Context, time.Time) (int64, error) { return 0, nil }
func (l *fakeLedger) Ping(context.Context) error                                  { return nil }
func (l *fakeLedger) Close() error                                                { return nil }

type fixture struct {
	svc      *Service
	gen      *scriptedGenerator
	notifier *fakeNotifier
	ledger   *fakeLedger
	sessions *session.MemoryStore
}

func newFixture() *fixture {
	gen := &scriptedGenerator{reply: "Happy to help."}
	f := &fixture{
		gen:      gen,
		notifier: &fakeNotifier{},
		ledger:   &fakeLedger{},
		sessions: session.NewMemoryStore(session.DefaultHistoryLimit),
	}
	f.svc = NewService(Deps{
		Sessions:   f.sessions,
		Classifier: lead.NewClassifier(gen, nil),
		Strategist: lead.NewStrategist(gen, "Lunotech", "We build websites.", nil),
		Notifier:   f.notifier,
		Ledger:     f.ledger,
	})
	return f
}
