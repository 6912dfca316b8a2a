package eval

import (
	"context"
	"fmt"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/model"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/value"
)

// NewEmbeddingFactory returns a Factory that compiles an embedding cell
// into an operation embedding its rendered source text and returning the
// resulting vector as an array of floats. embedder may be nil; compiled
// operations then fail at run time with a configuration error.
func NewEmbeddingFactory(embedder model.Embedder) Factory {
	return func(_ context.Context, home string, c cell.Descriptor, _ cell.TextRange) (op.Node, error) {
		names := extractPlaceholderNames(c.Source)
		sig := globalsSignatureFor(names)

		node := op.Node{
			Input:  sig,
			Output: op.NewOutputSignature(),
			Cell:   c,
		}
		node.Body = func(ctx context.Context, _ op.Dispatcher, payload op.Payload, _ *string, _ *string) (op.Output, error) {
			if embedder == nil {
				return op.Failed(fmt.Errorf("eval: embedding cell %s: no embedder configured", home)), nil
			}
			rendered, err := renderPrompt(c.Source, payload)
			if err != nil {
				return op.Failed(fmt.Errorf("eval: embedding cell %s: render: %w", home, err)), nil
			}
			vectors, err := embedder.Embed(ctx, []string{rendered})
			if err != nil {
				return op.Failed(fmt.Errorf("eval: embedding cell %s: embed: %w", home, err)), nil
			}
			if len(vectors) == 0 {
				return op.Ok(value.Array()), nil
			}
			items := make([]value.Value, len(vectors[0]))
			for i, f := range vectors[0] {
				items[i] = value.Float(f)
			}
			return op.Ok(value.Array(items...)), nil
		}
		return node, nil
	}
}
