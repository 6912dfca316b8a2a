package eval

import (
	"regexp"
	"sort"

	"github.com/arborist-dev/cellgraph/op"
	"github.com/arborist-dev/cellgraph/value"
)

// identifierPattern matches bare identifier tokens in a cell's source text.
// Static analysis here is intentionally shallow: it is a name-extraction
// pass, not a parser for any particular language, since per-language
// sandboxes are out of scope and handled by external collaborators.
var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// placeholderPattern matches a {{name}} interpolation in a prompt cell's
// source text.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// templateFieldPattern matches the leading field reference inside a
// text/template action, e.g. the "name" in "{{.name}}" or "{{if .ready}}".
var templateFieldPattern = regexp.MustCompile(`\{\{[^}]*?\.([A-Za-z_][A-Za-z0-9_]*)`)

// reservedWords are tokens extractIdentifiers ignores because they are
// control-flow keywords or literals rather than references to other cells.
var reservedWords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "in": {}, "let": {}, "true": {}, "false": {},
	"nil": {}, "null": {}, "and": {}, "or": {}, "not": {}, "func": {}, "return": {},
}

// extractIdentifiers returns the distinct, non-reserved identifier tokens
// referenced in source, in sorted order, used to infer the globals an
// operation depends on without a full per-language parser.
func extractIdentifiers(source string) []string {
	seen := map[string]struct{}{}
	for _, m := range identifierPattern.FindAllString(source, -1) {
		if _, reserved := reservedWords[m]; reserved {
			continue
		}
		seen[m] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// extractPlaceholderNames returns the distinct names referenced via
// {{name}} interpolation in source, in sorted order. Prompt cells are
// natural-language text, so their dependency set is the placeholders they
// interpolate, not every word in the cell.
func extractPlaceholderNames(source string) []string {
	seen := map[string]struct{}{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(source, -1) {
		seen[m[1]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// extractTemplateFields returns the distinct field names referenced via
// dotted access (".name") inside the {{ }} actions of a text/template
// source, in sorted order — a template cell's dependency set, narrower
// than extractIdentifiers, which would otherwise also pick up every
// keyword and plain-text word surrounding the actions.
func extractTemplateFields(source string) []string {
	seen := map[string]struct{}{}
	for _, m := range templateFieldPattern.FindAllStringSubmatch(source, -1) {
		seen[m[1]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// globalsSignatureFor builds an InputSignature whose Globals channel has one
// optional entry per name, defaulting to Null so a cell referencing a name
// that never resolves to a producer still runs rather than deadlocks.
func globalsSignatureFor(names []string) op.InputSignature {
	sig := op.NewInputSignature()
	for _, name := range names {
		sig.Globals[name] = op.Param{Required: false, Default: value.Null()}
	}
	return sig
}

// exprEnv flattens a payload's globals, args and kwargs channels into a single
// string-keyed environment suitable for github.com/expr-lang/expr, which
// evaluates against a plain map rather than cellgraph's channel model.
func exprEnv(payload op.Payload) map[string]any {
	env := make(map[string]any, len(payload.Globals)+len(payload.Args)+len(payload.Kwargs))
	for k, v := range payload.Globals {
		env[k] = toNative(v)
	}
	for k, v := range payload.Args {
		env[k] = toNative(v)
	}
	for k, v := range payload.Kwargs {
		env[k] = toNative(v)
	}
	return env
}

// toNative lowers a value.Value to the closest native Go type expr can
// operate on; null, sets, cell references and errors lower to nil since
// expr has no use for them as operands.
func toNative(v value.Value) any {
	switch v.Kind() {
	case value.KindBool:
		b, _ := v.AsBool()
		return b
	case value.KindInt:
		i, _ := v.AsInt()
		return i
	case value.KindFloat:
		f, _ := v.AsFloat()
		return f
	case value.KindString:
		s, _ := v.AsString()
		return s
	case value.KindArray:
		arr, _ := v.AsArray()
		out := make([]any, len(arr))
		for i, item := range arr {
			out[i] = toNative(item)
		}
		return out
	case value.KindObject:
		obj, _ := v.AsObject()
		out := map[string]any{}
		for _, k := range obj.Keys() {
			ov, _ := obj.Get(k)
			out[k] = toNative(ov)
		}
		return out
	default:
		return nil
	}
}

// fromNative lifts the dynamically-typed result of an expr evaluation back
// into a value.Value.
func fromNative(v any) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(x)
	case int:
		return value.Int(int64(x))
	case int64:
		return value.Int(x)
	case float64:
		return value.Float(x)
	case string:
		return value.String(x)
	case []any:
		items := make([]value.Value, len(x))
		for i, item := range x {
			items[i] = fromNative(item)
		}
		return value.Array(items...)
	case map[string]any:
		obj := value.NewOrderedObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, fromNative(x[k]))
		}
		return value.Object(obj)
	default:
		return value.Null()
	}
}
