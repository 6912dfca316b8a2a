package op

import "github.com/arborist-dev/cellgraph/value"

// Param describes one entry in a channel of an InputSignature: whether the
// operation requires a binding for it before it can run, and if not, what
// value to assume when none is supplied.
type Param struct {
	Required bool
	Default  value.Value
}

// InputSignature describes what an operation consumes, grouped into the
// four dependency channels: positional arguments (keyed by their decimal
// index, "0", "1", ...), keyword arguments, globals, and callable functions
// it may invoke.
type InputSignature struct {
	Args      map[string]Param
	Kwargs    map[string]Param
	Globals   map[string]Param
	Functions map[string]Param
}

// NewInputSignature returns an InputSignature with all four channels
// initialized to empty, non-nil maps.
func NewInputSignature() InputSignature {
	return InputSignature{
		Args:      map[string]Param{},
		Kwargs:    map[string]Param{},
		Globals:   map[string]Param{},
		Functions: map[string]Param{},
	}
}

// IsEmpty reports whether every channel is empty, meaning the operation has
// no dependencies and runs as a zero-dep singleton the first time it is
// queued.
func (sig InputSignature) IsEmpty() bool {
	return len(sig.Args) == 0 && len(sig.Kwargs) == 0 && len(sig.Globals) == 0 && len(sig.Functions) == 0
}

// Check reports whether the supplied channel bindings satisfy every
// required entry in sig. Optional entries missing from the bindings are
// tolerated; PrepopulateDefaults should be called first if the caller wants
// their defaults filled in before the body runs.
func (sig InputSignature) Check(args, kwargs, globals, functions map[string]value.Value) bool {
	return channelSatisfied(sig.Args, args) &&
		channelSatisfied(sig.Kwargs, kwargs) &&
		channelSatisfied(sig.Globals, globals) &&
		channelSatisfied(sig.Functions, functions)
}

func channelSatisfied(channel map[string]Param, bound map[string]value.Value) bool {
	for name, p := range channel {
		if !p.Required {
			continue
		}
		if _, ok := bound[name]; !ok {
			return false
		}
	}
	return true
}

// PrepopulateDefaults fills any channel entry missing from the bound map
// with its declared default, for every optional entry of sig. It mutates
// the supplied maps in place and is safe to call repeatedly.
func (sig InputSignature) PrepopulateDefaults(args, kwargs, globals map[string]value.Value) {
	fillDefaults(sig.Args, args)
	fillDefaults(sig.Kwargs, kwargs)
	fillDefaults(sig.Globals, globals)
}

func fillDefaults(channel map[string]Param, bound map[string]value.Value) {
	for name, p := range channel {
		if p.Required {
			continue
		}
		if _, ok := bound[name]; !ok {
			bound[name] = p.Default
		}
	}
}

// FunctionSignature is the input signature accepted by one callable exposed
// through an OutputSignature's Functions channel.
type FunctionSignature struct {
	Input InputSignature
}

// OutputSignature names what an operation exposes to the rest of the
// dependency graph: global values by name, and callable functions by name
// along with the signature each expects when invoked.
type OutputSignature struct {
	Globals   map[string]struct{}
	Functions map[string]FunctionSignature
}

// NewOutputSignature returns an OutputSignature with empty, non-nil maps.
func NewOutputSignature() OutputSignature {
	return OutputSignature{
		Globals:   map[string]struct{}{},
		Functions: map[string]FunctionSignature{},
	}
}

// ExposesGlobal reports whether name is among the globals this signature
// exposes.
func (sig OutputSignature) ExposesGlobal(name string) bool {
	_, ok := sig.Globals[name]
	return ok
}

// Function looks up a callable's signature by name.
func (sig OutputSignature) Function(name string) (FunctionSignature, bool) {
	fs, ok := sig.Functions[name]
	return fs, ok
}
