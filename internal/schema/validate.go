package schema

import (
	"fmt"
	"math"
	"sort"
)

// Validate checks data against root and returns the normalized value:
// unknown fields stripped, defaults filled in, integers normalized to int.
// On the first structural error it returns (nil, error) instead; it never
// returns a partially validated record. The input is not mutated.
func Validate(data any, root Field) (any, error) {
	return validateValue(data, root, "")
}

func validateValue(v any, f Field, path string) (any, error) {
	switch f.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, typeErr(path, f.Type, v)
		}
		if f.NonEmpty && s == "" {
			return nil, &FieldError{Path: path, Message: "must not be empty"}
		}
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			return nil, &FieldError{Path: path, Message: fmt.Sprintf("%q does not match %s", s, f.Pattern)}
		}
		if len(f.Enum) > 0 && !enumHas(f.Enum, s) {
			return nil, enumErr(path, f.Enum, s)
		}
		return s, nil

	case TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, typeErr(path, f.Type, v)
		}
		return b, nil

	case TypeInt:
		n, ok := asInt(v)
		if !ok {
			return nil, typeErr(path, f.Type, v)
		}
		if f.Min != nil && n < *f.Min {
			return nil, &FieldError{Path: path, Message: fmt.Sprintf("must be at least %d, got %d", *f.Min, n)}
		}
		if len(f.Enum) > 0 && !enumHas(f.Enum, n) {
			return nil, enumErr(path, f.Enum, n)
		}
		return n, nil

	case TypeObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, typeErr(path, f.Type, v)
		}
		out := make(map[string]any, len(f.Fields))
		for _, child := range f.Fields {
			cv, present := m[child.Name]
			if cv == nil {
				// JSON null counts as absent
				present = false
			}
			cpath := joinPath(path, child.Name)
			if !present {
				dv, filled, err := missingValue(child, cpath)
				if err != nil {
					return nil, err
				}
				if filled {
					out[child.Name] = dv
				}
				continue
			}
			nv, err := validateValue(cv, child, cpath)
			if err != nil {
				return nil, err
			}
			out[child.Name] = nv
		}
		// keys of m not declared in f.Fields never reach out: stripped
		return out, nil

	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return nil, typeErr(path, f.Type, v)
		}
		out := make([]any, 0, len(arr))
		for i, el := range arr {
			nv, err := validateValue(el, *f.Elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil

	case TypeMap:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, typeErr(path, f.Type, v)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys) // deterministic first error
		out := make(map[string]any, len(m))
		for _, k := range keys {
			if f.KeyCheck != nil && !f.KeyCheck(k) {
				// a key the schema does not admit is stripped like an
				// unknown field; only values produce structural errors
				continue
			}
			if m[k] == nil {
				continue
			}
			nv, err := validateValue(m[k], *f.Elem, joinPath(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	}

	return nil, &FieldError{Path: path, Message: fmt.Sprintf("unsupported schema type %v", int(f.Type))}
}

// missingValue resolves an absent field: explicit default first, then the
// required check, then for optional objects a default synthesized from the
// child schema so nested defaults apply recursively.
func missingValue(f Field, path string) (any, bool, error) {
	if f.Default != nil {
		return Clone(f.Default), true, nil
	}
	if f.Required {
		return nil, false, &FieldError{Path: path, Message: "required field is missing"}
	}
	if f.Type == TypeObject {
		if nv, err := validateValue(map[string]any{}, f, path); err == nil {
			return nv, true, nil
		}
	}
	return nil, false, nil
}

// asInt accepts the integer encodings JSON decoding can produce. A
// fractional float64 is not an int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if !math.IsInf(n, 0) && n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

func enumHas(enum []any, v any) bool {
	for _, e := range enum {
		if e == v {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of a JSON-shaped value. Validation uses it to
// guard declared defaults against mutation; callers holding shared records
// use it to hand out safe snapshots.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

func typeErr(path string, want Type, got any) error {
	return &FieldError{Path: path, Message: fmt.Sprintf("expected %s, got %s", want, typeName(got))}
}

func enumErr(path string, enum []any, got any) error {
	return &FieldError{Path: path, Message: fmt.Sprintf("value %v is not one of %v", got, enum)}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
