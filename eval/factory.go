// Package eval defines the Evaluator Dispatch contract: the pure factory
// function that compiles one cell variant's source text into a runnable
// op.Node, plus the registry that routes a cell.Descriptor to the factory
// for its Kind.
package eval

import (
	"context"
	"fmt"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/model"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/store"
	"github.com/arborist-dev/cellgraph/tool"
)

// Factory compiles one cell into an op.Node. home identifies the execution
// node the cell is being compiled for, carried as an opaque string (rather
// than execstate.NodeID) so this package never needs to import execstate —
// execstate.UpdateOp is the caller that already holds both types and can
// convert its own NodeID to a string at the boundary.
type Factory func(ctx context.Context, home string, c cell.Descriptor, tr cell.TextRange) (op.Node, error)

// Registry routes a cell.Kind to the Factory that compiles it.
type Registry struct {
	factories map[cell.Kind]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[cell.Kind]Factory{}}
}

// Register binds a Factory to a Kind, replacing any previous binding.
func (r *Registry) Register(k cell.Kind, f Factory) {
	r.factories[k] = f
}

// Compile routes c to the factory registered for c.Kind.
func (r *Registry) Compile(ctx context.Context, home string, c cell.Descriptor) (op.Node, error) {
	f, ok := r.factories[c.Kind]
	if !ok {
		return op.Node{}, fmt.Errorf("eval: no factory registered for cell kind %s", c.Kind)
	}
	return f(ctx, home, c, c.Range)
}

// Deps bundles the external collaborators the built-in factories that need
// more than a cell's source text are compiled against: a chat model for
// prompt and codegen cells, an embedder for embedding cells, and a
// key/value store for memory cells. A nil field is legal; the cell kinds
// that need it compile to operations whose body reports a configuration
// error instead of the registry refusing to build.
type Deps struct {
	Chat     model.ChatModel
	Embedder model.Embedder
	Memory   store.KV

	// Tools routes the tool names a web cell may invoke. A nil
	// Tools is legal; WebFactory falls back to a Registry preloaded with
	// only the built-in "http_request" tool.
	Tools *tool.Registry
}

// Default returns a Registry with every built-in variant factory
// registered (code, prompt, embedding, template, memory, web, codegen),
// wired against deps.
func Default(deps Deps) *Registry {
	r := NewRegistry()
	r.Register(cell.KindCode, CodeFactory)
	r.Register(cell.KindPrompt, NewPromptFactory(deps.Chat))
	r.Register(cell.KindEmbedding, NewEmbeddingFactory(deps.Embedder))
	r.Register(cell.KindTemplate, TemplateFactory)
	r.Register(cell.KindMemory, NewMemoryFactory(deps.Memory))
	r.Register(cell.KindWeb, NewWebFactory(deps.Tools))
	r.Register(cell.KindCodegen, NewCodegenFactory(deps.Chat))
	return r
}
