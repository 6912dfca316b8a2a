// Package value implements the Serialized Value: the tagged union used to
// pass data across cell and runtime boundaries.
package value

import (
	"fmt"
	"sort"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindSet
	KindCellRef
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindSet:
		return "set"
	case KindCellRef:
		return "cell_ref"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// CellRef is an opaque reference to another operation's compiled form, used
// as the value bound to a FunctionInvocation dependency.
type CellRef struct {
	OperationName string
	HomeID        int
}

// Value is the tagged union over {null, bool, int, float, string, array,
// ordered mapping string->value, set of values, opaque cell reference}.
// A Value also carries an error variant (KindError) so that a failed
// operation body can record its failure into an Output's value without
// a distinct error channel.
//
// The zero Value is Null.
type Value struct {
	kind    Kind
	boolV   bool
	intV    int64
	floatV  float64
	strV    string
	arrV    []Value
	objV    *OrderedObject
	setV    []Value
	cellV   CellRef
	errV    error
}

// Kind reports the variant held.
func (v Value) Kind() Kind { return v.kind }

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{kind: KindBool, boolV: b} }

// Int wraps an int64.
func Int(i int64) Value { return Value{kind: KindInt, intV: i} }

// Float wraps a float64.
func Float(f float64) Value { return Value{kind: KindFloat, floatV: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, strV: s} }

// Array wraps a slice of Values.
func Array(items ...Value) Value { return Value{kind: KindArray, arrV: items} }

// Set wraps an unordered collection of Values (duplicates by Equal are not
// deduplicated automatically; callers that need set semantics should
// dedupe before calling Set).
func Set(items ...Value) Value { return Value{kind: KindSet, setV: items} }

// Object wraps an OrderedObject.
func Object(obj *OrderedObject) Value { return Value{kind: KindObject, objV: obj} }

// Cell wraps a CellRef.
func Cell(ref CellRef) Value { return Value{kind: KindCellRef, cellV: ref} }

// Err wraps an error as a Value, used to record a failed operation body into
// an Operation Output's value slot.
func Err(err error) Value { return Value{kind: KindError, errV: err} }

// AsBool returns the bool payload and whether the Kind matched.
func (v Value) AsBool() (bool, bool) { return v.boolV, v.kind == KindBool }

// AsInt returns the int64 payload and whether the Kind matched.
func (v Value) AsInt() (int64, bool) { return v.intV, v.kind == KindInt }

// AsFloat returns the float64 payload and whether the Kind matched.
func (v Value) AsFloat() (float64, bool) { return v.floatV, v.kind == KindFloat }

// AsString returns the string payload and whether the Kind matched.
func (v Value) AsString() (string, bool) { return v.strV, v.kind == KindString }

// AsArray returns the array payload and whether the Kind matched.
func (v Value) AsArray() ([]Value, bool) { return v.arrV, v.kind == KindArray }

// AsSet returns the set payload and whether the Kind matched.
func (v Value) AsSet() ([]Value, bool) { return v.setV, v.kind == KindSet }

// AsObject returns the object payload and whether the Kind matched.
func (v Value) AsObject() (*OrderedObject, bool) { return v.objV, v.kind == KindObject }

// AsCellRef returns the CellRef payload and whether the Kind matched.
func (v Value) AsCellRef() (CellRef, bool) { return v.cellV, v.kind == KindCellRef }

// AsError returns the error payload and whether the Kind matched.
func (v Value) AsError() (error, bool) { return v.errV, v.kind == KindError }

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Equal reports whether v and o hold the same Value, satisfying cmp.Equal's
// Equal-method convention so go-cmp compares Values without reflecting into
// their unexported fields.
func (v Value) Equal(o Value) bool { return Equal(v, o) }

// Equal performs a deep structural comparison.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolV == b.boolV
	case KindInt:
		return a.intV == b.intV
	case KindFloat:
		return a.floatV == b.floatV
	case KindString:
		return a.strV == b.strV
	case KindArray:
		if len(a.arrV) != len(b.arrV) {
			return false
		}
		for i := range a.arrV {
			if !Equal(a.arrV[i], b.arrV[i]) {
				return false
			}
		}
		return true
	case KindSet:
		return equalAsMultiset(a.setV, b.setV)
	case KindObject:
		return a.objV.Equal(b.objV)
	case KindCellRef:
		return a.cellV == b.cellV
	case KindError:
		if a.errV == nil || b.errV == nil {
			return a.errV == b.errV
		}
		return a.errV.Error() == b.errV.Error()
	default:
		return false
	}
}

func equalAsMultiset(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for i, bv := range b {
			if used[i] {
				continue
			}
			if Equal(av, bv) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer for debugging/logging.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.boolV)
	case KindInt:
		return fmt.Sprintf("%d", v.intV)
	case KindFloat:
		return fmt.Sprintf("%g", v.floatV)
	case KindString:
		return fmt.Sprintf("%q", v.strV)
	case KindArray:
		return fmt.Sprintf("%v", v.arrV)
	case KindObject:
		return v.objV.String()
	case KindSet:
		return fmt.Sprintf("set%v", v.setV)
	case KindCellRef:
		return fmt.Sprintf("cell(%s)", v.cellV.OperationName)
	case KindError:
		return fmt.Sprintf("error(%v)", v.errV)
	default:
		return "<unknown value>"
	}
}

// OrderedObject is a string-keyed mapping that preserves insertion order,
// used for the Object variant and for the args/kwargs/globals/functions
// payload bundles gathered during a step.
type OrderedObject struct {
	keys   []string
	values map[string]Value
}

// NewOrderedObject creates an empty ordered object.
func NewOrderedObject() *OrderedObject {
	return &OrderedObject{values: make(map[string]Value)}
}

// Set inserts or overwrites a key, preserving original insertion position on
// overwrite.
func (o *OrderedObject) Set(key string, v Value) *OrderedObject {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

// Get looks up a key.
func (o *OrderedObject) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys returns keys in insertion order.
func (o *OrderedObject) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *OrderedObject) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Clone returns a deep-enough copy (new key slice and map; Values are
// immutable so their own internals are shared).
func (o *OrderedObject) Clone() *OrderedObject {
	if o == nil {
		return NewOrderedObject()
	}
	n := &OrderedObject{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]Value, len(o.values)),
	}
	for k, v := range o.values {
		n.values[k] = v
	}
	return n
}

// Equal compares two ordered objects by content, ignoring key order.
func (o *OrderedObject) Equal(other *OrderedObject) bool {
	if o.Len() != other.Len() {
		return false
	}
	for k, v := range o.values {
		ov, ok := other.values[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// String renders a deterministic (sorted-key) debug representation.
func (o *OrderedObject) String() string {
	if o == nil {
		return "{}"
	}
	keys := append([]string(nil), o.keys...)
	sort.Strings(keys)
	out := "{"
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		v := o.values[k]
		out += fmt.Sprintf("%s: %s", k, v.String())
	}
	return out + "}"
}
