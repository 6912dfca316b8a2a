package op

import (
	"testing"

	"github.com/arborist-dev/cellgraph/value"
	"github.com/stretchr/testify/require"
)

func TestInputSignatureCheckRequiresRequiredOnly(t *testing.T) {
	sig := NewInputSignature()
	sig.Args["0"] = Param{Required: true}
	sig.Kwargs["limit"] = Param{Required: false, Default: value.Int(10)}

	require.False(t, sig.Check(map[string]value.Value{}, nil, nil, nil))
	require.True(t, sig.Check(map[string]value.Value{"0": value.Int(1)}, nil, nil, nil))
}

func TestInputSignatureIsEmpty(t *testing.T) {
	sig := NewInputSignature()
	require.True(t, sig.IsEmpty())
	sig.Globals["g"] = Param{Required: true}
	require.False(t, sig.IsEmpty())
}

func TestPrepopulateDefaultsFillsOptionalOnly(t *testing.T) {
	sig := NewInputSignature()
	sig.Args["0"] = Param{Required: true}
	sig.Kwargs["limit"] = Param{Required: false, Default: value.Int(10)}

	args := map[string]value.Value{"0": value.Int(1)}
	kwargs := map[string]value.Value{}
	globals := map[string]value.Value{}
	sig.PrepopulateDefaults(args, kwargs, globals)

	require.Equal(t, value.Int(1), args["0"])
	require.Equal(t, value.Int(10), kwargs["limit"])
}

func TestOutputSignatureLookup(t *testing.T) {
	sig := NewOutputSignature()
	sig.Globals["total"] = struct{}{}
	sig.Functions["add"] = FunctionSignature{Input: NewInputSignature()}

	require.True(t, sig.ExposesGlobal("total"))
	require.False(t, sig.ExposesGlobal("missing"))
	_, ok := sig.Function("add")
	require.True(t, ok)
}

func TestOutputHelpers(t *testing.T) {
	out := Ok(value.Int(5))
	require.False(t, out.IsError())

	failed := Failed(errBoom)
	require.True(t, failed.IsError())
	errV, ok := failed.Value.AsError()
	require.True(t, ok)
	require.Equal(t, errBoom, errV)
}

var errBoom = testError("boom")

type testError string

func (e testError) Error() string { return string(e) }
