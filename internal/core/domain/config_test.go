package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultRunConfig tests the standard configuration values
func TestDefaultRunConfig(t *testing.T) {
	cfg := DefaultRunConfig()
	assert.Equal(t, 3, cfg.MaxConcurrent)
	assert.Equal(t, 2*time.Second, cfg.BatchDelay)
	assert.Equal(t, 90*time.Second, cfg.StepTimeout)
	assert.True(t, cfg.Headless)
	assert.Empty(t, cfg.OutputDir)
	require.NoError(t, cfg.Validate())
}

// TestRunConfig_Validate tests configuration rejection
func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RunConfig)
		wantErr bool
	}{
		{"defaults", func(c *RunConfig) {}, false},
		{"zero max concurrent", func(c *RunConfig) { c.MaxConcurrent = 0 }, true},
		{"negative max concurrent", func(c *RunConfig) { c.MaxConcurrent = -2 }, true},
		{"negative batch delay", func(c *RunConfig) { c.BatchDelay = -time.Second }, true},
		{"zero step timeout", func(c *RunConfig) { c.StepTimeout = 0 }, true},
		{"zero batch delay is fine", func(c *RunConfig) { c.BatchDelay = 0 }, false},
		{"max concurrent of one", func(c *RunConfig) { c.MaxConcurrent = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRunConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrConfiguration))
				assert.Equal(t, KindConfiguration, KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

// TestBatch tests issuer membership helpers
func TestBatch(t *testing.T) {
	b := Batch{
		Seq: 1,
		Requests: []InvoiceRequest{
			{Issuer: "20111111112", Position: 0},
			{Issuer: "20333333334", Position: 1},
		},
	}

	assert.Equal(t, 2, b.Size())
	assert.True(t, b.HasIssuer("20111111112"))
	assert.False(t, b.HasIssuer("20555555556"))
	assert.Equal(t, []TaxID{"20111111112", "20333333334"}, b.Issuers())
}

// TestSteps tests the wizard ordering
func TestSteps(t *testing.T) {
	steps := Steps()
	require.Len(t, steps, 6)
	assert.Equal(t, StepNavigatingToForm, steps[0])
	assert.Equal(t, StepConfirming, steps[5])

	for _, s := range steps {
		assert.True(t, s.IsValid(), "step %s should be valid", s)
		assert.NotEmpty(t, s.Description())
	}
	assert.False(t, Step("retrying").IsValid())
	assert.Equal(t, "Unknown step", Step("retrying").Description())
}

// TestInvoiceResult tests outcome helpers
func TestInvoiceResult(t *testing.T) {
	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	ok := InvoiceResult{
		Outcome:   OutcomeSucceeded,
		InvoiceID: "12345678",
		StartedAt: start,
		EndedAt:   start.Add(42 * time.Second),
	}
	assert.True(t, ok.Succeeded())
	assert.Equal(t, 42*time.Second, ok.Duration())

	failed := InvoiceResult{Outcome: OutcomeFailed, Kind: KindTimeout}
	assert.False(t, failed.Succeeded())
}
