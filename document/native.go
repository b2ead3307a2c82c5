package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
)

// ErrUnsupported is returned when a Go value has no document representation.
var ErrUnsupported = errors.New("unsupported value")

// FromNative converts a decoded Go tree into a document. It accepts what
// encoding/json and go-yaml produce: nil, bool, numbers, json.Number, string,
// []any, map[string]any and ordered yaml.MapSlice values. Plain maps have no
// order, so their members are sorted by key.
func FromNative(v any) (Value, error) {
	switch tv := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return tv, nil
	case bool:
		return Bool(tv), nil
	case string:
		return String(tv), nil
	case float64:
		return Number(tv), nil
	case float32:
		return Number(tv), nil
	case int:
		return Number(tv), nil
	case int8:
		return Number(tv), nil
	case int16:
		return Number(tv), nil
	case int32:
		return Number(tv), nil
	case int64:
		return Number(tv), nil
	case uint:
		return Number(tv), nil
	case uint8:
		return Number(tv), nil
	case uint16:
		return Number(tv), nil
	case uint32:
		return Number(tv), nil
	case uint64:
		return Number(tv), nil
	case json.Number:
		f, err := tv.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %s: %v", ErrUnsupported, tv, err)
		}
		return Number(f), nil
	case []any:
		arr := make(Array, 0, len(tv))
		for i, e := range tv {
			ev, err := FromNative(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, ev)
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := NewObject()
		for _, k := range keys {
			ev, err := FromNative(tv[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			o.Set(k, ev)
		}
		return o, nil
	case yaml.MapSlice:
		o := NewObject()
		for _, item := range tv {
			k, ok := item.Key.(string)
			if !ok {
				k = fmt.Sprint(item.Key)
			}
			ev, err := FromNative(item.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			o.Set(k, ev)
		}
		return o, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
}

// Native converts a document into plain Go values as encoding/json would
// decode them. Object order is lost.
func Native(v Value) any {
	switch tv := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(tv)
	case Number:
		return float64(tv)
	case String:
		return string(tv)
	case Array:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = Native(e)
		}
		return out
	case *Object:
		out := make(map[string]any, tv.Len())
		tv.Range(func(k string, e Value) bool {
			out[k] = Native(e)
			return true
		})
		return out
	}
	return nil
}
