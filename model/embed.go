package model

import "context"

// Embedder abstracts a provider's embedding endpoint, the contract an
// embedding cell's body runs against. The teacher's stack has no analogous
// interface (it never embeds), so this is shaped directly on ChatModel's
// provider-agnostic pattern.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
