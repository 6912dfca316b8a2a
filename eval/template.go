package eval

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/value"
)

// TemplateFactory compiles a template cell into an operation. The template
// is parsed once at factory time with Go's text/template, following the
// pack's own convention of pre-compiling prompt templates to fail fast on a
// malformed template rather than on every invocation; it is executed
// against the bound payload's globals on each run and its rendered text
// returned as a string Value.
func TemplateFactory(_ context.Context, home string, c cell.Descriptor, _ cell.TextRange) (op.Node, error) {
	tmpl, err := template.New(home).Parse(c.Source)
	if err != nil {
		return op.Node{}, fmt.Errorf("eval: template cell %s: parse: %w", home, err)
	}

	names := extractTemplateFields(c.Source)
	sig := globalsSignatureFor(names)

	node := op.Node{
		Input:  sig,
		Output: op.NewOutputSignature(),
		Cell:   c,
	}
	node.Body = func(_ context.Context, _ op.Dispatcher, payload op.Payload, _ *string, _ *string) (op.Output, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, exprEnv(payload)); err != nil {
			return op.Failed(fmt.Errorf("eval: template cell %s: execute: %w", home, err)), nil
		}
		return op.Ok(value.String(buf.String())), nil
	}
	return node, nil
}
