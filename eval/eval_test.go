package eval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arborist-dev/cellgraph/cell"
	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/store"
	"github.com/arborist-dev/cellgraph/tool"
	"github.com/arborist-dev/cellgraph/value"
	"github.com/stretchr/testify/require"
)

func TestCodeFactoryEvaluatesExpression(t *testing.T) {
	node, err := CodeFactory(context.Background(), "home", cell.Descriptor{
		Kind:     cell.KindCode,
		Language: "expr",
		Source:   "x + 1",
	}, cell.TextRange{})
	require.NoError(t, err)
	require.Contains(t, node.Input.Globals, "x")

	out, err := node.Body(context.Background(), nil, op.Payload{
		Globals: map[string]value.Value{"x": value.Int(41)},
	}, nil, nil)
	require.NoError(t, err)
	n, ok := out.Value.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(42), n)
}

func TestCodeFactoryRejectsBadSyntax(t *testing.T) {
	_, err := CodeFactory(context.Background(), "home", cell.Descriptor{
		Kind:   cell.KindCode,
		Source: "(((",
	}, cell.TextRange{})
	require.Error(t, err)
}

func TestCodeFactoryExternalLanguageFailsAtRunTime(t *testing.T) {
	node, err := CodeFactory(context.Background(), "home", cell.Descriptor{
		Kind:     cell.KindCode,
		Language: "python",
		Source:   "print('hi')",
	}, cell.TextRange{})
	require.NoError(t, err, "an unsupported language must still compile to a node")

	out, err := node.Body(context.Background(), nil, op.Payload{}, nil, nil)
	require.NoError(t, err)
	require.True(t, out.IsError())
}

func TestTemplateFactoryRendersGlobals(t *testing.T) {
	node, err := TemplateFactory(context.Background(), "home", cell.Descriptor{
		Kind:   cell.KindTemplate,
		Source: "hello {{.name}}",
	}, cell.TextRange{})
	require.NoError(t, err)

	out, err := node.Body(context.Background(), nil, op.Payload{
		Globals: map[string]value.Value{"name": value.String("world")},
	}, nil, nil)
	require.NoError(t, err)
	s, _ := out.Value.AsString()
	require.Equal(t, "hello world", s)
}

func TestMemoryFactoryRoundTripsThroughKV(t *testing.T) {
	kv := store.NewMemStore()
	setNode, err := NewMemoryFactory(kv)(context.Background(), "home", cell.Descriptor{
		Kind:   cell.KindMemory,
		Source: "set users/1",
	}, cell.TextRange{})
	require.NoError(t, err)
	require.Contains(t, setNode.Input.Kwargs, "value")

	_, err = setNode.Body(context.Background(), nil, op.Payload{
		Kwargs: map[string]value.Value{"value": value.String("alice")},
	}, nil, nil)
	require.NoError(t, err)

	getNode, err := NewMemoryFactory(kv)(context.Background(), "home", cell.Descriptor{
		Kind:   cell.KindMemory,
		Source: "get users/1",
	}, cell.TextRange{})
	require.NoError(t, err)

	out, err := getNode.Body(context.Background(), nil, op.Payload{}, nil, nil)
	require.NoError(t, err)
	s, ok := out.Value.AsString()
	require.True(t, ok)
	require.Equal(t, "alice", s)
}

func TestMemoryFactoryRejectsMalformedDirective(t *testing.T) {
	_, err := NewMemoryFactory(store.NewMemStore())(context.Background(), "home", cell.Descriptor{
		Kind:   cell.KindMemory,
		Source: "nonsense",
	}, cell.TextRange{})
	require.Error(t, err)
}

func TestRegistryCompileRoutesByKind(t *testing.T) {
	r := Default(Deps{Memory: store.NewMemStore()})
	_, err := r.Compile(context.Background(), "home", cell.Descriptor{Kind: cell.KindCode, Source: "1 + 1"})
	require.NoError(t, err)
}

func TestWebFactoryFetchesURLThroughToolRegistry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	tools := tool.NewRegistry()
	tools.Register(tool.NewHTTPTool(srv.Client()))

	node, err := NewWebFactory(tools)(context.Background(), "home", cell.Descriptor{
		Kind: cell.KindWeb, Source: srv.URL,
	}, cell.TextRange{})
	require.NoError(t, err)

	out, err := node.Body(context.Background(), nil, op.Payload{}, nil, nil)
	require.NoError(t, err)
	require.True(t, value.Equal(value.String("pong"), out.Value))
}

func TestWebFactoryReportsNonSuccessStatusAsBodyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tools := tool.NewRegistry()
	tools.Register(tool.NewHTTPTool(srv.Client()))

	node, err := NewWebFactory(tools)(context.Background(), "home", cell.Descriptor{
		Kind: cell.KindWeb, Source: srv.URL,
	}, cell.TextRange{})
	require.NoError(t, err)

	out, err := node.Body(context.Background(), nil, op.Payload{}, nil, nil)
	require.NoError(t, err)
	require.True(t, out.IsError())
}
