package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordPricesKnownModel(t *testing.T) {
	ct := NewCostTracker()
	s := ct.Record("gpt-4o-mini", Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}, "summarize")
	require.InDelta(t, 0.15+0.60, s.CostUSD, 1e-9)
	require.Equal(t, 0.75, ct.TotalUSD())
}

func TestRecordUnknownModelCostsZeroButStillCounted(t *testing.T) {
	ct := NewCostTracker()
	s := ct.Record("some-unlisted-model", Usage{InputTokens: 500, OutputTokens: 500}, "")
	require.Equal(t, 0.0, s.CostUSD)
	require.Len(t, ct.Spends(), 1)
}

func TestByModelAttributesCostsSeparately(t *testing.T) {
	ct := NewCostTracker()
	ct.Record("gpt-4o-mini", Usage{InputTokens: 1_000_000}, "")
	ct.Record("claude-3-haiku-20240307", Usage{InputTokens: 1_000_000}, "")

	byModel := ct.ByModel()
	require.InDelta(t, 0.15, byModel["gpt-4o-mini"], 1e-9)
	require.InDelta(t, 0.25, byModel["claude-3-haiku-20240307"], 1e-9)
}
