package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/leadrelay/internal/contact"
	"github.com/ashureev/leadrelay/internal/domain"
	"github.com/ashureev/leadrelay/internal/identity"
	"github.com/ashureev/leadrelay/internal/lead"
	"github.com/ashureev/leadrelay/internal/notify"
	"github.com/ashureev/leadrelay/internal/session"
	"github.com/ashureev/leadrelay/internal/store"
)

const defaultNotifyTimeout = 10 * time.Second

// Deps are the collaborators of a Service. Ledger and Log are optional.
type Deps struct {
	Sessions      session.Store
	Classifier    *lead.Classifier
	Strategist    *lead.Strategist
	Notifier      notify.Notifier
	Ledger        store.Repository
	Log           ConversationLogger
	NotifyTimeout time.Duration
	Logger        *slog.Logger
}

// Service runs the per-message pipeline: classify, decide, notify, reply.
type Service struct {
	sessions      session.Store
	classifier    *lead.Classifier
	strategist    *lead.Strategist
	notifier      notify.Notifier
	ledger        store.Repository
	log           ConversationLogger
	notifyTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewService creates a Service.
func NewService(d Deps) *Service {
	s := &Service{
		sessions:      d.Sessions,
		classifier:    d.Classifier,
		strategist:    d.Strategist,
		notifier:      d.Notifier,
		ledger:        d.Ledger,
		log:           d.Log,
		notifyTimeout: d.NotifyTimeout,
		logger:        d.Logger,
		now:           time.Now,
	}
	if s.log == nil {
		s.log = noopConversationLogger{}
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultNotifyTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// HandleMessage processes one visitor message. It never fails: internal faults
// become ErrorReply. Turns of the same session are processed one at a time in
// arrival order.
func (s *Service) HandleMessage(ctx context.Context, req ChatRequest) ChatResponse {
	key := identity.SessionKey(req.SessionID, DefaultSessionKey)

	h, err := s.sessions.Acquire(ctx, key)
	if err != nil {
		s.logger.Warn("Session acquire failed", "session_id", key, "error", err)
		return ErrorReply()
	}
	defer h.Release()

	s.logEvent(key, "inbound", EventUserMessage, req.Message, nil)

	if contact.IsReal(req.StoredContact) {
		h.UpdateProfile(func(p *domain.Profile) {
			if p.Contact == "" {
				p.Contact = req.StoredContact
			}
		})
	}

	cls := s.classifier.Classify(ctx, h.Session(), req.Message)
	h.UpdateProfile(cls.Apply)

	sess := h.Session()
	agreement := lead.IsAgreementPhrase(req.Message)
	decision := lead.Decide(lead.DecisionInput{
		Stage:            cls.Stage,
		Profile:          sess.Profile,
		Latches:          sess.Latches,
		Agreement:        agreement,
		ContactConfirmed: cls.ContactConfirmed,
	})
	h.MergeLatches(decision.Latches)

	s.logger.Info("Message classified",
		"session_id", key,
		"stage", cls.Stage,
		"contact_confirmed", cls.ContactConfirmed,
		"agreement", agreement,
		"alert", decision.Alert,
	)

	if decision.Alert {
		s.sendAlert(ctx, sess, decision.Title, cls.Stage, req.Message)
		h.MergeLatches(domain.AlertLatches{AlertSent: true})
	}

	reply := s.strategist.Respond(ctx, lead.ReplyRequest{
		Session:          h.Session(),
		Message:          req.Message,
		Stage:            cls.Stage,
		ContactConfirmed: cls.ContactConfirmed,
		Language:         lead.ParseLanguage(req.Language),
	})

	h.Append(
		domain.Turn{Role: domain.RoleUser, Content: req.Message},
		domain.Turn{Role: domain.RoleAssistant, Content: reply},
	)
	s.logEvent(key, "outbound", EventAssistantMessage, reply, map[string]any{"stage": cls.Stage})

	resp := ChatResponse{Text: reply, QuickReplies: []string{}}
	if c := h.Session().Profile.Contact; c != "" {
		resp.SaveContact = &c
	}
	return resp
}

// sendAlert notifies the operator and records the alert in the ledger.
// Failures are logged and never reach the visitor.
func (s *Service) sendAlert(ctx context.Context, sess domain.Session, title string, stage domain.Stage, message string) {
	report := notify.Report{
		Title:      title,
		SessionID:  sess.Key,
		Profile:    sess.Profile,
		Transcript: sess.Transcript(domain.Turn{Role: domain.RoleUser, Content: message}),
	}

	delivered := true
	if err := s.notify(ctx, report); err != nil {
		delivered = false
		s.logger.Error("Lead alert delivery failed", "session_id", sess.Key, "title", title, "error", err)
	} else {
		s.logger.Info("Lead alert sent", "session_id", sess.Key, "title", title)
	}
	s.logEvent(sess.Key, "outbound", EventAlert, title, map[string]any{"delivered": delivered, "stage": stage})

	if s.ledger == nil {
		return
	}
	rec := &domain.AlertRecord{
		SessionID: sess.Key,
		Title:     title,
		Stage:     stage,
		Contact:   sess.Profile.Contact,
		Delivered: delivered,
		CreatedAt: s.now().UTC(),
	}
	if err := s.ledger.RecordAlert(ctx, rec); err != nil {
		s.logger.Warn("Failed to record alert", "session_id", sess.Key, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, r notify.Report) error {
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	return s.notifier.Notify(ctx, r)
}

// ReportError forwards a session's full transcript to the operator on the
// visitor's request. Unknown sessions are not created.
func (s *Service) ReportError(ctx context.Context, sessionID string) ReportResponse {
	key := identity.SessionKey(sessionID, DefaultSessionKey)

	sess, ok := s.sessions.Snapshot(key)
	if !ok {
		return ReportResponse{Status: ReportStatusError, Message: "Session not found."}
	}

	err := s.notify(ctx, notify.Report{
		Title:      lead.TitleUserReported,
		SessionID:  key,
		Profile:    sess.Profile,
		Transcript: sess.Turns,
	})
	s.logEvent(key, "outbound", EventReport, lead.TitleUserReported, map[string]any{"delivered": err == nil})
	if err != nil {
		s.logger.Error("User report delivery failed", "session_id", key, "error", err)
		return ReportResponse{Status: ReportStatusError, Message: "Report could not be sent."}
	}
	s.logger.Info("User report sent", "session_id", key)
	return ReportResponse{Status: ReportStatusSuccess, Message: "Report sent."}
}

// GetStats returns relay statistics.
func (s *Service) GetStats() Stats {
	return Stats{ActiveSessions: s.sessions.Len()}
}

// Close releases resources.
func (s *Service) Close() {
	if err := s.log.Close(); err != nil {
		s.logger.Warn("failed to close conversation logger", "error", err)
	}
}

func (s *Service) logEvent(sessionID, direction, eventType, content string, meta map[string]any) {
	s.log.Log(ConversationLogEvent{
		Timestamp:  s.now().UTC().Format(time.RFC3339Nano),
		SessionID:  sessionID,
		Channel:    "chat_http",
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Content:    cleanForReadability(content),
		Meta:       meta,
	})
}
