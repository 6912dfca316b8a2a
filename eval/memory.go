package eval

import (
	"context"
	"fmt"
	"strings"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/store"
	"github.com/arborist-dev/cellgraph/value"
)

// NewMemoryFactory returns a Factory that compiles a memory cell into an
// operation backed by a store.KV. A memory cell's source names the key it
// reads and, if it takes a "value" argument, writes: "get users/42" or
// "set users/42" (the verb followed by the key). kv may be nil; compiled
// operations then fail at run time with a configuration error.
func NewMemoryFactory(kv store.KV) Factory {
	return func(_ context.Context, home string, c cell.Descriptor, _ cell.TextRange) (op.Node, error) {
		verb, key, err := parseMemoryDirective(c.Source)
		if err != nil {
			return op.Node{}, fmt.Errorf("eval: memory cell %s: %w", home, err)
		}

		sig := op.NewInputSignature()
		if verb == "set" {
			sig.Kwargs["value"] = op.Param{Required: true}
		}

		node := op.Node{
			Input:  sig,
			Output: op.NewOutputSignature(),
			Cell:   c,
		}
		node.Body = func(ctx context.Context, _ op.Dispatcher, payload op.Payload, _ *string, _ *string) (op.Output, error) {
			if kv == nil {
				return op.Failed(fmt.Errorf("eval: memory cell %s: no store configured", home)), nil
			}
			switch verb {
			case "set":
				raw, err := value.Marshal(payload.Kwargs["value"])
				if err != nil {
					return op.Failed(fmt.Errorf("eval: memory cell %s: marshal: %w", home, err)), nil
				}
				if err := kv.Set(ctx, key, raw); err != nil {
					return op.Failed(fmt.Errorf("eval: memory cell %s: set: %w", home, err)), nil
				}
				return op.Ok(payload.Kwargs["value"]), nil
			default: // "get"
				raw, found, err := kv.Get(ctx, key)
				if err != nil {
					return op.Failed(fmt.Errorf("eval: memory cell %s: get: %w", home, err)), nil
				}
				if !found {
					return op.Ok(value.Null()), nil
				}
				v, err := value.Unmarshal(raw)
				if err != nil {
					return op.Failed(fmt.Errorf("eval: memory cell %s: unmarshal: %w", home, err)), nil
				}
				return op.Ok(v), nil
			}
		}
		return node, nil
	}
}

func parseMemoryDirective(source string) (verb, key string, err error) {
	fields := strings.Fields(strings.TrimSpace(source))
	if len(fields) != 2 {
		return "", "", fmt.Errorf("expected \"get <key>\" or \"set <key>\", got %q", source)
	}
	verb = strings.ToLower(fields[0])
	if verb != "get" && verb != "set" {
		return "", "", fmt.Errorf("unknown memory verb %q", fields[0])
	}
	return verb, fields[1], nil
}
