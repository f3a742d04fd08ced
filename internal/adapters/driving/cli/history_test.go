package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driven"
)

// Ensure mockRunArchive implements the interface.
var _ driven.RunArchive = (*mockRunArchive)(nil)

// mockRunArchive implements driven.RunArchive for testing.
type mockRunArchive struct {
	reports   map[string]*domain.RunReport
	summaries []domain.RunSummary
	saved     []*domain.RunReport
	prunedTo  int
	saveErr   error
}

func (m *mockRunArchive) SaveReport(_ context.Context, report *domain.RunReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, report)
	return nil
}

func (m *mockRunArchive) GetReport(_ context.Context, runID string) (*domain.RunReport, error) {
	report, ok := m.reports[runID]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
	}
	return report, nil
}

func (m *mockRunArchive) ListRuns(_ context.Context, limit int) ([]domain.RunSummary, error) {
	if limit > 0 && limit < len(m.summaries) {
		return m.summaries[:limit], nil
	}
	return m.summaries, nil
}

func (m *mockRunArchive) Prune(_ context.Context, keep int) error {
	m.prunedTo = keep
	return nil
}

func (m *mockRunArchive) Close() error {
	return nil
}

func setupHistoryTest(archive driven.RunArchive) func() {
	oldArchive := runArchive
	runArchive = archive
	return func() {
		runArchive = oldArchive
	}
}

func testRunSummaries() []domain.RunSummary {
	return []domain.RunSummary{
		{
			ID:          "run-b",
			StartedAt:   time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
			EndedAt:     time.Date(2026, 3, 11, 9, 5, 0, 0, time.UTC),
			Total:       4,
			Succeeded:   2,
			Failed:      1,
			Interrupted: true,
		},
		{
			ID:        "run-a",
			StartedAt: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
			EndedAt:   time.Date(2026, 3, 10, 14, 32, 0, 0, time.UTC),
			Total:     2,
			Succeeded: 2,
		},
	}
}

func TestHistoryCmd_Use(t *testing.T) {
	assert.Equal(t, "history [run-id]", historyCmd.Use)
}

func TestHistoryCmd_Short(t *testing.T) {
	assert.Equal(t, "Inspect archived runs", historyCmd.Short)
}

func TestHistoryCmd_ListsRuns(t *testing.T) {
	cleanup := setupHistoryTest(&mockRunArchive{summaries: testRunSummaries()})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Archived runs:")
	assert.Contains(t, buf.String(), "run-b")
	assert.Contains(t, buf.String(), "4 invoices: 2 ok, 1 failed, interrupted")
	assert.Contains(t, buf.String(), "run-a")
	assert.Contains(t, buf.String(), "2 invoices: 2 ok, 0 failed")
}

func TestHistoryCmd_ListEmpty(t *testing.T) {
	cleanup := setupHistoryTest(&mockRunArchive{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No archived runs.")
}

func TestHistoryCmd_LimitFlag(t *testing.T) {
	cleanup := setupHistoryTest(&mockRunArchive{summaries: testRunSummaries()})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "--limit", "1"})
	defer func() {
		rootCmd.SetArgs(nil)
		historyLimit = 0
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "run-b")
	assert.NotContains(t, buf.String(), "run-a")
}

func TestHistoryCmd_ShowsRun(t *testing.T) {
	archive := &mockRunArchive{reports: map[string]*domain.RunReport{"run-123": testRunReport()}}
	cleanup := setupHistoryTest(archive)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "run-123"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Run run-123: 1 invoices in 1 batches")
	assert.Contains(t, buf.String(), "invoice 123456789")
}

func TestHistoryCmd_RunNotFound(t *testing.T) {
	cleanup := setupHistoryTest(&mockRunArchive{reports: map[string]*domain.RunReport{}})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"history", "run-nope"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "run run-nope is not archived")
}

func TestHistoryCmd_NotConfigured(t *testing.T) {
	cleanup := setupHistoryTest(nil)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "run archive not configured")
}
