package field

import "fmt"

// Category tells where a field's value comes from.
type Category uint8

const (
	// Standard fields are the fixed VCF columns.
	Standard Category = iota
	// Info fields are declared by ##INFO header lines.
	Info
)

func (c Category) String() string {
	switch c {
	case Standard:
		return "standard"
	case Info:
		return "info"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// Type is the value type of a field.
type Type uint8

const (
	Text Type = iota
	Integer
	Float
	Flag
)

func (t Type) String() string {
	switch t {
	case Text:
		return "Text"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Flag:
		return "Flag"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// Operators returns the operators valid for values of this type.
func (t Type) Operators() []Operator {
	switch t {
	case Integer, Float:
		return []Operator{Lower, LowerOrEqual, Equal, GreaterOrEqual, Greater}
	case Flag:
		return []Operator{Present, NotPresent}
	default:
		return []Operator{TextEqual, TextNotEqual, TextContains}
	}
}

// Supports reports whether op is valid for this type.
func (t Type) Supports(op Operator) bool {
	for _, o := range t.Operators() {
		if o == op {
			return true
		}
	}
	return false
}

// TypeFromHeader maps a ##INFO Type attribute to a field type. String,
// Character and unknown types are Text.
func TypeFromHeader(s string) Type {
	switch s {
	case "Integer":
		return Integer
	case "Float":
		return Float
	case "Flag":
		return Flag
	default:
		return Text
	}
}
