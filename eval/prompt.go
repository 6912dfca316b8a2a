package eval

import (
	"context"
	"fmt"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/model"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/value"
)

// NewPromptFactory returns a Factory that compiles a prompt cell into an
// operation whose body renders the cell's source as the user turn of a
// chat completion and returns the model's text as a string Value. chat may
// be nil; compiled operations then fail at run time rather than at
// compile time, so a graph can still be built against a registry whose
// model hasn't been configured yet.
func NewPromptFactory(chat model.ChatModel) Factory {
	return func(_ context.Context, home string, c cell.Descriptor, _ cell.TextRange) (op.Node, error) {
		names := extractPlaceholderNames(c.Source)
		sig := globalsSignatureFor(names)

		node := op.Node{
			Input:  sig,
			Output: op.NewOutputSignature(),
			Cell:   c,
		}
		node.Body = func(ctx context.Context, _ op.Dispatcher, payload op.Payload, _ *string, _ *string) (op.Output, error) {
			if chat == nil {
				return op.Failed(fmt.Errorf("eval: prompt cell %s: no chat model configured", home)), nil
			}
			rendered, err := renderPrompt(c.Source, payload)
			if err != nil {
				return op.Failed(fmt.Errorf("eval: prompt cell %s: render: %w", home, err)), nil
			}
			out, err := chat.Chat(ctx, []model.Message{{Role: model.RoleUser, Content: rendered}}, nil)
			if err != nil {
				return op.Failed(fmt.Errorf("eval: prompt cell %s: chat: %w", home, err)), nil
			}
			return op.Ok(value.String(out.Text)), nil
		}
		return node, nil
	}
}

// renderPrompt substitutes {{name}} placeholders in source with the bound
// payload's globals, matching the {{ }} convention prompt cells use to
// reference other cells' outputs. It is a narrower substitution than
// TemplateFactory's text/template pass: prompt source is user-authored
// natural language, not a Go template, so only plain name interpolation is
// supported.
func renderPrompt(source string, payload op.Payload) (string, error) {
	env := exprEnv(payload)
	return substitutePlaceholders(source, env), nil
}

func substitutePlaceholders(source string, env map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(source, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := env[name]; ok {
			return fmt.Sprintf("%v", v)
		}
		return match
	})
}
