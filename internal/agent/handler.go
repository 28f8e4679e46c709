package agent

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/ashureev/leadrelay/internal/api"
	"github.com/ashureev/leadrelay/internal/identity"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (64KB).
const defaultMaxRequestBodySize = 64 << 10

// Handler serves the widget's chat and report endpoints.
type Handler struct {
	agent       *Service
	maxBodySize int64
	logger      *slog.Logger
}

// NewHandler creates a Handler. maxBodySize <= 0 selects the default.
func NewHandler(agent *Service, maxBodySize int64, logger *slog.Logger) *Handler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxRequestBodySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{agent: agent, maxBodySize: maxBodySize, logger: logger}
}

// RegisterRoutes registers the widget routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.HandleChat)
	r.Post("/report", h.HandleReport)
	r.Get("/api/stats", h.HandleStats)
}

// HandleChat handles POST /chat. The widget always gets a 200 with a
// renderable reply, including for malformed bodies.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
			panic(rec)
		}
		h.logger.Error("Chat request panicked",
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"panic", rec,
			"stack", string(debug.Stack()),
		)
		api.JSON(w, http.StatusOK, ErrorReply())
	}()

	var req ChatRequest
	if err := api.DecodeJSON(w, r, h.maxBodySize, &req); err != nil {
		h.logger.Warn("Invalid chat request",
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"remote_ip", identity.IPFromRequest(r),
			"error", err,
		)
		api.JSON(w, http.StatusOK, ErrorReply())
		return
	}

	h.logger.Info("Chat request",
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"session_id", identity.SessionKey(req.SessionID, DefaultSessionKey),
		"message_length", len(req.Message),
	)
	api.JSON(w, http.StatusOK, h.agent.HandleMessage(r.Context(), req))
}

// HandleReport handles POST /report.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := api.DecodeJSON(w, r, h.maxBodySize, &req); err != nil {
		h.logger.Warn("Invalid report request", "request_id", chiMiddleware.GetReqID(r.Context()), "error", err)
		api.JSON(w, http.StatusOK, ReportResponse{Status: ReportStatusError, Message: "Invalid request."})
		return
	}
	api.JSON(w, http.StatusOK, h.agent.ReportError(r.Context(), req.SessionID))
}

// HandleStats handles GET /api/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	api.JSON(w, http.StatusOK, h.agent.GetStats())
}

// Close releases handler resources.
func (h *Handler) Close() {
	if h.agent != nil {
		h.agent.Close()
	}
}
