package prism

import (
	"fmt"
	"time"
)

var ZeroValue = Value{}

type Value struct {
	Type    Type
	Int     int
	Float   float64
	Boolean bool
	Str     string
	Time    time.Time
}

func NewNull() Value {
	return Value{
		Type: Type{TypeID: TypeIDNull},
	}
}

func NewInt(value int) Value {
	return Value{
		Type: Type{TypeID: TypeIDInt},
		Int:  value,
	}
}

func NewFloat(value float64) Value {
	return Value{
		Type:  Type{TypeID: TypeIDFloat},
		Float: value,
	}
}

func NewBoolean(value bool) Value {
	return Value{
		Type:    Type{TypeID: TypeIDBoolean},
		Boolean: value,
	}
}

func NewString(value string) Value {
	return Value{
		Type: Type{TypeID: TypeIDString},
		Str:  value,
	}
}

func NewTime(value time.Time) Value {
	return Value{
		Type: Type{TypeID: TypeIDTime},
		Time: value,
	}
}

func (value Value) Compare(other Value) int {
	// The runtime types may be different for a union.
	// The concrete instance type will be present.
	if value.Type.TypeID != other.Type.TypeID {
		if value.Type.TypeID < other.Type.TypeID {
			return -1
		} else {
			return 1
		}
	}

	switch value.Type.TypeID {
	case TypeIDNull:
		return 0

	case TypeIDInt:
		if value.Int < other.Int {
			return -1
		} else if value.Int > other.Int {
			return 1
		}
		return 0

	case TypeIDFloat:
		if value.Float < other.Float {
			return -1
		} else if value.Float > other.Float {
			return 1
		}
		return 0

	case TypeIDBoolean:
		if !value.Boolean && other.Boolean {
			return -1
		} else if value.Boolean && !other.Boolean {
			return 1
		}
		return 0

	case TypeIDString:
		if value.Str < other.Str {
			return -1
		} else if value.Str > other.Str {
			return 1
		}
		return 0

	case TypeIDTime:
		if value.Time.Before(other.Time) {
			return -1
		} else if value.Time.After(other.Time) {
			return 1
		}
		return 0
	}
	panic(fmt.Sprintf("unexhaustive value type match: %d", value.Type.TypeID))
}

func (value Value) Equal(other Value) bool {
	return value.Compare(other) == 0
}

func (value Value) String() string {
	switch value.Type.TypeID {
	case TypeIDNull:
		return "<null>"
	case TypeIDInt:
		return fmt.Sprint(value.Int)
	case TypeIDFloat:
		return fmt.Sprint(value.Float)
	case TypeIDBoolean:
		return fmt.Sprint(value.Boolean)
	case TypeIDString:
		return fmt.Sprintf("'%s'", value.Str)
	case TypeIDTime:
		return value.Time.Format(time.RFC3339)
	}
	panic(fmt.Sprintf("unexhaustive value type match: %d", value.Type.TypeID))
}
