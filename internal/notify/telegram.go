package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
)

// TelegramConfig holds configuration for the Telegram notifier.
type TelegramConfig struct {
	Token   string
	ChatID  string
	APIURL  string // empty selects the public Bot API
	Timeout time.Duration
}

// Telegram sends reports to one chat through the Telegram Bot API. It only
// calls sendMessage; no update polling is started.
type Telegram struct {
	bot    *bot.Bot
	token  string
	chatID string
	logger *slog.Logger
}

// Ensure Telegram implements Notifier.
var _ Notifier = (*Telegram)(nil)

// NewTelegram creates a Telegram notifier. A missing token or chat ID is not an
// error: it is logged once here and Notify then fails fast with ErrNotConfigured.
func NewTelegram(cfg TelegramConfig, logger *slog.Logger) (*Telegram, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Telegram{token: cfg.Token, chatID: cfg.ChatID, logger: logger}
	if cfg.Token == "" || cfg.ChatID == "" {
		logger.Warn("Telegram credentials missing, operator alerts disabled")
		return t, nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(cfg.Timeout, &http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.APIURL != "" {
		opts = append(opts, bot.WithServerURL(strings.TrimRight(cfg.APIURL, "/")))
	}
	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", redactToken(err, cfg.Token))
	}
	t.bot = b
	return t, nil
}

// Notify implements Notifier.
func (t *Telegram) Notify(ctx context.Context, r Report) error {
	if t.bot == nil {
		return ErrNotConfigured
	}

	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   Format(r),
	})
	if err != nil {
		// Transport errors carry the request URL, which embeds the bot token.
		return fmt.Errorf("send telegram message: %w", redactToken(err, t.token))
	}

	t.logger.Info("Telegram alert sent", "title", r.Title, "session_id", r.SessionID)
	return nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<redacted>"), err: err}
}
