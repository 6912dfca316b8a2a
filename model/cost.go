package model

import (
	"sync"
	"time"
)

// Pricing is the USD-per-million-token cost of a model's input and output
// tokens.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// defaultPricing covers the models NewChatModel's adapters default to, plus
// their near neighbors. A model absent from this table still accumulates
// token counts under CostTracker, just at zero cost, rather than erroring.
var defaultPricing = map[string]Pricing{
	"gpt-4o":                     {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-4o-mini":                {InputPer1M: 0.15, OutputPer1M: 0.60},
	"gpt-4-turbo":                {InputPer1M: 10.00, OutputPer1M: 30.00},
	"gpt-3.5-turbo":              {InputPer1M: 0.50, OutputPer1M: 1.50},
	"claude-3-5-sonnet-latest":   {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-5-sonnet-20241022": {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-opus-20240229":     {InputPer1M: 15.00, OutputPer1M: 75.00},
	"claude-3-haiku-20240307":    {InputPer1M: 0.25, OutputPer1M: 1.25},
	"gemini-1.5-pro":             {InputPer1M: 1.25, OutputPer1M: 5.00},
	"gemini-1.5-flash":           {InputPer1M: 0.075, OutputPer1M: 0.30},
}

// Spend is one priced Chat call: its token usage and the cost it was
// billed at.
type Spend struct {
	Model         string
	Usage         Usage
	CostUSD       float64
	Recorded      time.Time
	OperationName string
}

// CostTracker accumulates the USD cost of every Chat call a prompt or
// codegen cell's body makes, attributed per model and, optionally, per
// operation name. The zero value is not usable; construct with
// NewCostTracker.
type CostTracker struct {
	mu      sync.Mutex
	pricing map[string]Pricing

	spend    []Spend
	totalUSD float64
	byModel  map[string]float64
}

// NewCostTracker returns a CostTracker seeded with defaultPricing.
func NewCostTracker() *CostTracker {
	return &CostTracker{
		pricing: defaultPricing,
		byModel: map[string]float64{},
	}
}

// Record prices one Chat call's usage against modelName and accumulates it.
// operationName is attribution metadata only (e.g. the cell that made the
// call) and may be empty.
func (ct *CostTracker) Record(modelName string, usage Usage, operationName string) Spend {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	pricing := ct.pricing[modelName] // zero Pricing if unknown: zero cost, still counted

	costUSD := (float64(usage.InputTokens)/1_000_000.0)*pricing.InputPer1M +
		(float64(usage.OutputTokens)/1_000_000.0)*pricing.OutputPer1M

	s := Spend{
		Model:         modelName,
		Usage:         usage,
		CostUSD:       costUSD,
		Recorded:      time.Now(),
		OperationName: operationName,
	}
	ct.spend = append(ct.spend, s)
	ct.totalUSD += costUSD
	ct.byModel[modelName] += costUSD
	return s
}

// TotalUSD returns the cumulative cost recorded so far.
func (ct *CostTracker) TotalUSD() float64 {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.totalUSD
}

// ByModel returns a copy of the cost breakdown attributed to each model.
func (ct *CostTracker) ByModel() map[string]float64 {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	out := make(map[string]float64, len(ct.byModel))
	for k, v := range ct.byModel {
		out[k] = v
	}
	return out
}

// Spends returns a copy of every recorded Spend, in recording order.
func (ct *CostTracker) Spends() []Spend {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	out := make([]Spend, len(ct.spend))
	copy(out, ct.spend)
	return out
}
