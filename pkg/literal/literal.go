// Package literal evaluates serialized literal expressions ("[1, 2, 3]",
// "{'a': 1}") into native values. Evaluation is delegated to Starlark, which
// accepts Python-style literals, including single-quoted strings, True/False
// and None, without exposing any I/O or statement execution.
package literal

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.starlark.net/starlark"
)

// Eval evaluates a single literal expression and returns the corresponding
// Go value: nil, bool, int64, float64, string, []interface{} or
// map[string]interface{}.
func Eval(src string) (interface{}, error) {
	thread := &starlark.Thread{Name: "literal"}
	val, err := starlark.Eval(thread, "literal", src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate literal")
	}
	return toGo(val)
}

// EvalJSON evaluates a literal expression and re-encodes the result as
// canonical JSON text.
func EvalJSON(src string) (string, error) {
	val, err := Eval(src)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(val)
	if err != nil {
		return "", errors.Wrap(err, "encode literal as json")
	}
	return string(data), nil
}

func toGo(v starlark.Value) (interface{}, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s overflows int64", val.String())
		}
		return i64, nil
	case starlark.Float:
		return float64(val), nil
	case *starlark.List:
		out := make([]interface{}, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := toGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case starlark.Tuple:
		out := make([]interface{}, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := toGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("tuple index %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]interface{}, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be a string, got %s", item[0].Type())
			}
			gv, err := toGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", string(key), err)
			}
			out[string(key)] = gv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %s", v.Type())
	}
}
