package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/leadrelay/internal/agent"
	"github.com/ashureev/leadrelay/internal/config"
	"github.com/ashureev/leadrelay/internal/lead"
	"github.com/ashureev/leadrelay/internal/llm"
	"github.com/ashureev/leadrelay/internal/notify"
	"github.com/ashureev/leadrelay/internal/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gen := llm.Unavailable{Reason: "test"}
	notifier, err := notify.NewTelegram(notify.TelegramConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	svc := agent.NewService(agent.Deps{
		Sessions:   session.NewMemoryStore(session.DefaultHistoryLimit),
		Classifier: lead.NewClassifier(gen, nil),
		Strategist: lead.NewStrategist(gen, "Lunotech", "", nil),
		Notifier:   notifier,
	})
	h := agent.NewHandler(svc, 0, nil)
	cfg := &config.Config{AllowedOrigins: []string{"https://example.com"}}

	srv := httptest.NewServer(newRouter(cfg, h))
	t.Cleanup(func() {
		srv.Close()
		h.Close()
	})
	return srv
}

func TestRouterLiveness(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health status = %d", resp.StatusCode)
	}
}

func TestRouterChatWithoutModelFallsBack(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"session_id":"x","message":"hello"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got agent.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Text != lead.FallbackReply {
		t.Errorf("Text = %q, want fallback reply", got.Text)
	}
}

func TestRouterCORS(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
