package field

import (
	"fmt"
	"strings"
)

// Operator is a binary predicate between an extracted value and a
// comparison value.
type Operator uint8

const (
	Lower Operator = iota
	LowerOrEqual
	Equal
	GreaterOrEqual
	Greater
	TextEqual
	TextNotEqual
	TextContains
	Present
	NotPresent
)

var operatorSymbols = [...]string{
	Lower:          "<",
	LowerOrEqual:   "<=",
	Equal:          "=",
	GreaterOrEqual: ">=",
	Greater:        ">",
	TextEqual:      "equals",
	TextNotEqual:   "not-equals",
	TextContains:   "contains",
	Present:        "present",
	NotPresent:     "not-present",
}

func (op Operator) String() string {
	if int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return fmt.Sprintf("Operator(%d)", op)
}

// ParseOperator parses an operator symbol. "==" is accepted for "=",
// and "!=" for "not-equals".
func ParseOperator(s string) (Operator, error) {
	switch s = strings.ToLower(s); s {
	case "==":
		return Equal, nil
	case "!=", "not_equals":
		return TextNotEqual, nil
	case "not_present":
		return NotPresent, nil
	}
	for i, sym := range operatorSymbols {
		if sym == s {
			return Operator(i), nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// NeedsValue reports whether the operator takes a comparison value.
func (op Operator) NeedsValue() bool {
	return op != Present && op != NotPresent
}

// Query applies the operator to the extracted value a and the comparison
// value b. It returns false when a is nil or when an operand has a type
// the operator does not accept.
func (op Operator) Query(a, b any) bool {
	if a == nil {
		return false
	}
	switch op {
	case Lower, LowerOrEqual, Equal, GreaterOrEqual, Greater:
		return op.compare(a, b)
	case TextEqual, TextNotEqual, TextContains:
		x, ok1 := a.(string)
		y, ok2 := b.(string)
		if !ok1 || !ok2 {
			return false
		}
		switch op {
		case TextEqual:
			return strings.EqualFold(x, y)
		case TextNotEqual:
			return !strings.EqualFold(x, y)
		default:
			return strings.Contains(strings.ToLower(x), strings.ToLower(y))
		}
	case Present:
		v, ok := a.(bool)
		return ok && v
	case NotPresent:
		v, ok := a.(bool)
		return ok && !v
	}
	return false
}

func (op Operator) compare(a, b any) bool {
	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			return ordered(op, x, y)
		}
	}
	x, ok1 := toFloat(a)
	y, ok2 := toFloat(b)
	if !ok1 || !ok2 {
		return false
	}
	return ordered(op, x, y)
}

func ordered[T int64 | float64](op Operator, x, y T) bool {
	switch op {
	case Lower:
		return x < y
	case LowerOrEqual:
		return x <= y
	case Equal:
		return x == y
	case GreaterOrEqual:
		return x >= y
	case Greater:
		return x > y
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}
