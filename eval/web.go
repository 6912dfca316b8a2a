package eval

import (
	"context"
	"fmt"
	"strings"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/tool"
	"github.com/arborist-dev/cellgraph/value"
)

// defaultTools returns a Registry preloaded with the built-in HTTP tool,
// used whenever a web cell compiles without one supplied by Deps.
func defaultTools() *tool.Registry {
	r := tool.NewRegistry()
	r.Register(tool.NewHTTPTool(nil))
	return r
}

// NewWebFactory returns a Factory that compiles a web cell into an
// operation issuing an HTTP GET against the cell's source, treated as a
// URL, through the "http_request" tool in tools (or a default registry
// carrying only that tool, if tools is nil). A non-2xx response is
// reported as a body error rather than a factory-time failure, since
// reachability can only be known at run time.
func NewWebFactory(tools *tool.Registry) Factory {
	if tools == nil {
		tools = defaultTools()
	}
	return func(_ context.Context, home string, c cell.Descriptor, _ cell.TextRange) (op.Node, error) {
		url := strings.TrimSpace(c.Source)

		node := op.Node{
			Input:  op.NewInputSignature(),
			Output: op.NewOutputSignature(),
			Cell:   c,
		}
		node.Body = func(ctx context.Context, _ op.Dispatcher, _ op.Payload, _ *string, _ *string) (op.Output, error) {
			out, err := tools.Call(ctx, "http_request", map[string]interface{}{
				"url":    url,
				"method": "GET",
			})
			if err != nil {
				return op.Failed(fmt.Errorf("eval: web cell %s: %w", home, err)), nil
			}
			status, _ := out["status_code"].(int)
			if status < 200 || status >= 300 {
				return op.Failed(fmt.Errorf("eval: web cell %s: status %d", home, status)), nil
			}
			body, _ := out["body"].(string)
			return op.Ok(value.String(body)), nil
		}
		return node, nil
	}
}
