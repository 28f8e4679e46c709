package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/leadrelay/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List operator alerts recorded in the ledger",
		RunE:  runAlerts,
	}
	cmd.Flags().StringP("session", "s", "", "Filter by session id")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete ledger entries older than a given age",
		RunE:  runAlertsPrune,
	}
	prune.Flags().Duration("older-than", 30*24*time.Hour, "Delete alerts older than this")

	cmd.AddCommand(prune)
	RootCmd.AddCommand(cmd)
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openLedger()
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer closeLedger(s)

	alerts, err := s.ListAlerts(cmd.Context(), store.ListParams{SessionID: sessionID, Limit: limit})
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}

	b, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func runAlertsPrune(cmd *cobra.Command, _ []string) error {
	olderThan, _ := cmd.Flags().GetDuration("older-than")
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive, got %s", olderThan)
	}

	s, err := openLedger()
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer closeLedger(s)

	n, err := s.DeleteAlertsBefore(cmd.Context(), time.Now().Add(-olderThan))
	if err != nil {
		return fmt.Errorf("prune alerts: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "{\"deleted\": %d}\n", n)
	return nil
}

func closeLedger(s store.Repository) {
	if err := s.Close(); err != nil {
		slog.Error("Failed to close alert ledger", "error", err)
	}
}
