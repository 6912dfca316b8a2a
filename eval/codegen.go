package eval

import (
	"context"
	"fmt"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/model"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/value"
)

// codegenSystemPrompt instructs the model to produce only source code, no
// surrounding prose, so a codegen cell's output can feed straight into a
// code cell elsewhere in the graph.
const codegenSystemPrompt = "Respond with only the requested source code. Do not include explanations or markdown fences."

// NewCodegenFactory returns a Factory that compiles a codegen cell into an
// operation asking chat to generate code from the cell's source,
// interpreted as a natural-language specification, and returning the
// generated text as a string Value. chat may be nil; compiled operations
// then fail at run time with a configuration error.
func NewCodegenFactory(chat model.ChatModel) Factory {
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
				return op.Failed(fmt.Errorf("eval: codegen cell %s: no chat model configured", home)), nil
			}
			rendered, err := renderPrompt(c.Source, payload)
			if err != nil {
				return op.Failed(fmt.Errorf("eval: codegen cell %s: render: %w", home, err)), nil
			}
			messages := []model.Message{
				{Role: model.RoleSystem, Content: codegenSystemPrompt},
				{Role: model.RoleUser, Content: rendered},
			}
			out, err := chat.Chat(ctx, messages, nil)
			if err != nil {
				return op.Failed(fmt.Errorf("eval: codegen cell %s: chat: %w", home, err)), nil
			}
			return op.Ok(value.String(out.Text)), nil
		}
		return node, nil
	}
}
