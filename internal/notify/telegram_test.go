package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sentMessageResponse = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`

func newTestTelegram(t *testing.T, token, apiURL string) *Telegram {
	t.Helper()
	tg, err := NewTelegram(TelegramConfig{Token: token, ChatID: "42", APIURL: apiURL}, nil)
	if err != nil {
		t.Fatalf("NewTelegram failed: %v", err)
	}
	return tg
}

func TestTelegramNotifySendsMessage(t *testing.T) {
	var gotPath, gotChatID, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sentMessageResponse))
	}))
	defer srv.Close()

	tg := newTestTelegram(t, "123:abc", srv.URL)
	if err := tg.Notify(context.Background(), Report{Title: "HOT LEAD - NEW CONTACT"}); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotChatID != "42" {
		t.Errorf("chat_id = %q, want 42", gotChatID)
	}
	if !strings.Contains(gotText, "HOT LEAD - NEW CONTACT") {
		t.Errorf("message text missing title: %q", gotText)
	}
}

func TestTelegramNotifyReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tg := newTestTelegram(t, "t", srv.URL)
	err := tg.Notify(context.Background(), Report{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestTelegramNotifyWithoutCredentials(t *testing.T) {
	tg, err := NewTelegram(TelegramConfig{}, nil)
	if err != nil {
		t.Fatalf("missing credentials must not be an error: %v", err)
	}
	if err := tg.Notify(context.Background(), Report{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestTelegramNotifyRedactsTokenOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	tg := newTestTelegram(t, "secret-token", url)
	err := tg.Notify(context.Background(), Report{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("error leaks bot token: %v", err)
	}
}
