package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/leadrelay/internal/agent"
	"github.com/ashureev/leadrelay/internal/api"
	"github.com/ashureev/leadrelay/internal/config"
	"github.com/ashureev/leadrelay/internal/knowledge"
	"github.com/ashureev/leadrelay/internal/lead"
	"github.com/ashureev/leadrelay/internal/llm"
	"github.com/ashureev/leadrelay/internal/middleware"
	"github.com/ashureev/leadrelay/internal/notify"
	"github.com/ashureev/leadrelay/internal/session"
	"github.com/ashureev/leadrelay/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

const livenessText = "Lead relay is running."

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the chat relay HTTP server (default)",
		RunE:  runServe,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	slog.Info("Starting server", "port", cfg.Port, "llm_provider", cfg.LLM.Provider)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ledger store.Repository
	if cfg.AlertLedger {
		repo, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("initialize alert ledger: %w", err)
		}
		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				slog.Error("Failed to close alert ledger", "error", closeErr)
			}
		}()
		if err := repo.Ping(ctx); err != nil {
			return fmt.Errorf("alert ledger health check: %w", err)
		}
		ledger = repo
		slog.Info("Alert ledger ready", "path", cfg.DBPath)
	}

	gen, err := llm.New(ctx, llm.Config{
		Provider:     cfg.LLM.Provider,
		Model:        cfg.LLM.Model,
		GroqAPIKey:   cfg.LLM.GroqAPIKey,
		GroqBaseURL:  cfg.LLM.GroqBaseURL,
		GoogleAPIKey: cfg.LLM.GoogleAPIKey,
		Timeout:      cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize text generation: %w", err)
	}

	notifier, err := notify.NewTelegram(notify.TelegramConfig{
		Token:   cfg.Telegram.Token,
		ChatID:  cfg.Telegram.ChatID,
		APIURL:  cfg.Telegram.APIURL,
		Timeout: cfg.Telegram.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize operator notifications: %w", err)
	}

	kb, err := knowledge.Load(cfg.KnowledgeDir, logger)
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize conversation logger: %w", err)
	}

	sessions := session.NewMemoryStore(cfg.HistoryLimit)
	svc := agent.NewService(agent.Deps{
		Sessions:      sessions,
		Classifier:    lead.NewClassifier(gen, logger),
		Strategist:    lead.NewStrategist(gen, cfg.CompanyName, kb, logger),
		Notifier:      notifier,
		Ledger:        ledger,
		Log:           conversationLogger,
		NotifyTimeout: cfg.Telegram.Timeout,
		Logger:        logger,
	})
	agentHandler := agent.NewHandler(svc, cfg.MaxRequestBodySize, logger)
	defer agentHandler.Close()

	if cfg.SessionIdleTTL > 0 {
		sweeperDone := sessions.StartSweeper(ctx, cfg.SessionIdleTTL, 0, func(key string) {
			slog.Debug("Session evicted", "session_id", key)
		})
		defer func() {
			stop()
			<-sweeperDone
		}()
	} else {
		slog.Info("Session sweeper disabled (SESSION_IDLE_TTL not set)")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, agentHandler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout*2 + cfg.Telegram.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server stopped successfully")
	return nil
}

// newRouter wires global middleware and the relay routes.
func newRouter(cfg *config.Config, h *agent.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/", api.Liveness(livenessText))
	h.RegisterRoutes(r)
	return r
}
