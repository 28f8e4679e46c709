package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/leadrelay/internal/domain"
	"github.com/ashureev/leadrelay/internal/store"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
		dbPath = ""
	})
	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedLedger(t *testing.T, path string, recs ...*domain.AlertRecord) {
	t.Helper()
	s, err := store.NewSQLite(path)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer s.Close()
	for _, rec := range recs {
		if err := s.RecordAlert(context.Background(), rec); err != nil {
			t.Fatalf("record alert: %v", err)
		}
	}
}

func TestAlertsCommandListsLedger(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "groq")
	path := filepath.Join(t.TempDir(), "alerts.db")
	seedLedger(t, path,
		&domain.AlertRecord{SessionID: "a", Title: "HOT LEAD - NEW CONTACT", Stage: domain.StageSalesReady, CreatedAt: time.Now().UTC()},
		&domain.AlertRecord{SessionID: "b", Title: "HOT LEAD - URGENT", Stage: domain.StageUrgent, CreatedAt: time.Now().UTC()},
	)

	out, err := runRoot(t, "alerts", "--db", path, "--session", "a", "--limit", "10")
	if err != nil {
		t.Fatalf("alerts failed: %v", err)
	}
	var got []domain.AlertRecord
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0].SessionID != "a" {
		t.Fatalf("unexpected alerts: %+v", got)
	}

	// The command must have released the database.
	seedLedger(t, path)
}

func TestAlertsPruneRejectsNonPositiveAge(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "groq")
	path := filepath.Join(t.TempDir(), "alerts.db")

	_, err := runRoot(t, "alerts", "prune", "--db", path, "--older-than", "-1h")
	if err == nil || !strings.Contains(err.Error(), "older-than") {
		t.Fatalf("expected an age validation error, got %v", err)
	}
}

func TestAlertsPruneDeletesOldEntries(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "groq")
	path := filepath.Join(t.TempDir(), "alerts.db")
	seedLedger(t, path,
		&domain.AlertRecord{SessionID: "old", Title: "x", Stage: domain.StageUrgent, CreatedAt: time.Now().Add(-48 * time.Hour).UTC()},
		&domain.AlertRecord{SessionID: "new", Title: "y", Stage: domain.StageUrgent, CreatedAt: time.Now().UTC()},
	)

	out, err := runRoot(t, "alerts", "prune", "--db", path, "--older-than", "24h")
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if strings.TrimSpace(out) != `{"deleted": 1}` {
		t.Errorf("output = %q", out)
	}
}
