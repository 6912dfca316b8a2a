package value

import (
	"encoding/json"
	"errors"
)

// wireValue is the JSON-on-the-wire shape for a Value, used by memory cells
// persisting through store.KV (the same way the teacher's Checkpoint[S]
// relies on S being JSON-serializable).
type wireValue struct {
	Kind  string          `json:"kind"`
	Bool  bool            `json:"bool,omitempty"`
	Int   int64           `json:"int,omitempty"`
	Float float64         `json:"float,omitempty"`
	Str   string          `json:"str,omitempty"`
	Arr   []Value         `json:"arr,omitempty"`
	Obj   *wireObject     `json:"obj,omitempty"`
	Set   []Value         `json:"set,omitempty"`
	Cell  *CellRef        `json:"cell,omitempty"`
	Err   string          `json:"err,omitempty"`
}

type wireObject struct {
	Keys   []string         `json:"keys"`
	Values map[string]Value `json:"values"`
}

// Marshal serializes v to its wire JSON form, the representation memory
// cells persist through store.KV.
func Marshal(v Value) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal parses a Value from its wire JSON form.
func Unmarshal(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	w := wireValue{Kind: v.kind.String()}
	switch v.kind {
	case KindBool:
		w.Bool = v.boolV
	case KindInt:
		w.Int = v.intV
	case KindFloat:
		w.Float = v.floatV
	case KindString:
		w.Str = v.strV
	case KindArray:
		w.Arr = v.arrV
	case KindSet:
		w.Set = v.setV
	case KindObject:
		if v.objV != nil {
			w.Obj = &wireObject{Keys: v.objV.Keys(), Values: v.objV.values}
		}
	case KindCellRef:
		ref := v.cellV
		w.Cell = &ref
	case KindError:
		if v.errV != nil {
			w.Err = v.errV.Error()
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case "null", "":
		*v = Null()
	case "bool":
		*v = Bool(w.Bool)
	case "int":
		*v = Int(w.Int)
	case "float":
		*v = Float(w.Float)
	case "string":
		*v = String(w.Str)
	case "array":
		*v = Array(w.Arr...)
	case "set":
		*v = Set(w.Set...)
	case "object":
		obj := NewOrderedObject()
		if w.Obj != nil {
			for _, k := range w.Obj.Keys {
				obj.Set(k, w.Obj.Values[k])
			}
		}
		*v = Object(obj)
	case "cell_ref":
		if w.Cell != nil {
			*v = Cell(*w.Cell)
		} else {
			*v = Cell(CellRef{})
		}
	case "error":
		*v = Err(errors.New(w.Err))
	default:
		return errors.New("value: unknown kind " + w.Kind)
	}
	return nil
}
