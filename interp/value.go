package interp

import (
	"fmt"
	"strconv"
)

// Value is the result of evaluating an expression: Integer, Text or Unit.
type Value interface {
	is_Value()
}

type Integer int64

func (v Integer) is_Value() {}

type Text string

func (v Text) is_Value() {}

// Unit is the result of a call that returns nothing.
type Unit struct{}

func (v Unit) is_Value() {}

func KindOf(v Value) string {
	switch v.(type) {
	case Integer:
		return "Integer"
	case Text:
		return "Text"
	case Unit:
		return "Unit"
	}
	panic(fmt.Sprintf("unhandled value %T", v))
}

// Format renders a value for display at a prompt: text is quoted, Unit is ().
func Format(v Value) string {
	switch val := v.(type) {
	case Integer:
		return strconv.FormatInt(int64(val), 10)
	case Text:
		return strconv.Quote(string(val))
	case Unit:
		return "()"
	}
	panic(fmt.Sprintf("unhandled value %T", v))
}

func truth(b bool) Integer {
	if b {
		return 1
	}
	return 0
}
