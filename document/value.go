// Package document models form data as a tree of JSON values.
//
// A document is built from a closed set of node types: Null, Bool, Number,
// String, Array and *Object. A nil Value stands for an absent value (a missing
// object member), which is a different state from Null.
//
// Values are treated as immutable once they are shared. The mutating methods
// on *Object exist to build documents; use Clone before changing a value that
// someone else may hold.
package document

import (
	"fmt"
)

// Kind identifies the node type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a node of a document. It is only implemented by the types of this
// package.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number. Numbers follow JSON semantics, so 1 and 1.0 are the
// same value.
type Number float64

// String is a JSON string.
type String string

// Array is a JSON array.
type Array []Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}
