package schema

import (
	"fmt"
	"regexp"
)

// Type enumerates the value shapes a Field can declare.
type Type int

const (
	TypeString Type = iota
	TypeBool
	TypeInt
	TypeObject
	TypeArray
	TypeMap
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	default:
		return "unknown"
	}
}

// Field describes one schema node: a named field inside an object, an array
// element, or a map value. Schemas are plain data and immutable at runtime;
// a whole record schema is just the root Field of a tree.
type Field struct {
	Name     string
	Type     Type
	Required bool
	Default  any  // filled in when the field is absent
	NonEmpty bool // strings only: reject ""
	Min      *int // ints only: inclusive floor
	Enum     []any
	Pattern  *regexp.Regexp

	Fields   []Field           // object children, in declaration order
	Elem     *Field            // array element / map value schema
	KeyCheck func(string) bool // map keys failing this are stripped
}

// FieldError is a structural validation failure at a specific path,
// e.g. "teams[0].url".
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
