package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifySQLiteConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want SQLiteConflict
	}{
		{"nil", nil, NoConflict},
		{"constraint", errors.New("constraint failed: UNIQUE"), NoConflict},
		{"busy code", errors.New("database is locked (5) (SQLITE_BUSY)"), ConflictBusy},
		{"wrapped locked", fmt.Errorf("insert alert: %w", errors.New("database is locked")), ConflictLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySQLiteConflict(tt.err)
			if got != tt.want {
				t.Errorf("ClassifySQLiteConflict(%v) = %q, want %q", tt.err, got, tt.want)
			}
			if got.Retryable() != (tt.want != NoConflict) {
				t.Errorf("Retryable() = %v for %q", got.Retryable(), got)
			}
		})
	}
}
