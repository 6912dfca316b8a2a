package eval

import (
	"context"
	"fmt"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/expr-lang/expr"
)

// supportedCodeLanguages lists the Language values CodeFactory executes
// in-process. Any other language names a cell written for an external
// collaborator (a real Python/JS/etc. runtime embedded by the host); those
// cells compile to an operation whose body reports a clear error rather
// than silently doing nothing, since running them is out of scope here.
var supportedCodeLanguages = map[string]struct{}{
	"":     {}, // untagged code cells default to expr
	"expr": {},
}

// CodeFactory compiles a code cell into an operation. In-process execution
// is backed by github.com/expr-lang/expr: the cell's source is compiled
// once at factory time (so a syntax error surfaces at compile time, not at
// first step) and evaluated against the bound payload on every run.
func CodeFactory(_ context.Context, home string, c cell.Descriptor, tr cell.TextRange) (op.Node, error) {
	if _, ok := supportedCodeLanguages[c.Language]; !ok {
		return externalLanguageNode(home, c, tr), nil
	}

	program, err := expr.Compile(c.Source)
	if err != nil {
		return op.Node{}, fmt.Errorf("eval: code cell %s: compile: %w", home, err)
	}

	names := extractIdentifiers(c.Source)
	sig := globalsSignatureFor(names)

	node := op.Node{
		Input:  sig,
		Output: op.NewOutputSignature(),
		Cell:   c,
	}
	node.Body = func(_ context.Context, _ op.Dispatcher, payload op.Payload, _ *string, _ *string) (op.Output, error) {
		result, err := expr.Run(program, exprEnv(payload))
		if err != nil {
			return op.Failed(fmt.Errorf("eval: code cell %s: run: %w", home, err)), nil
		}
		return op.Ok(fromNative(result)), nil
	}
	return node, nil
}

// externalLanguageNode builds a placeholder operation for a code cell whose
// Language names a runtime this engine never embeds; its body fails with a
// descriptive error instead of the factory rejecting the cell outright, so
// a graph containing one still compiles and the failure surfaces at step
// time like any other body error.
func externalLanguageNode(home string, c cell.Descriptor, _ cell.TextRange) op.Node {
	lang := c.Language
	return op.Node{
		Input:  op.NewInputSignature(),
		Output: op.NewOutputSignature(),
		Cell:   c,
		Body: func(_ context.Context, _ op.Dispatcher, _ op.Payload, _ *string, _ *string) (op.Output, error) {
			return op.Failed(fmt.Errorf("eval: code cell %s: language %q requires an external collaborator runtime", home, lang)), nil
		},
	}
}
