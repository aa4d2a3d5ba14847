package functions

import (
	"fmt"

	"github.com/prismql/prism/plan"
	"github.com/prismql/prism/prism"
)

// FunctionMap returns the scalar functions available to plan expressions.
func FunctionMap() map[string]plan.FunctionDescriptor {
	return map[string]plan.FunctionDescriptor{
		"+": {
			TypeFn: sameNumericTypes(2),
			Strict: true,
			Function: func(values []prism.Value) (prism.Value, error) {
				return numericBinary(values[0], values[1],
					func(a, b int) int { return a + b },
					func(a, b float64) float64 { return a + b },
				)
			},
		},
		"*": {
			TypeFn: sameNumericTypes(2),
			Strict: true,
			Function: func(values []prism.Value) (prism.Value, error) {
				return numericBinary(values[0], values[1],
					func(a, b int) int { return a * b },
					func(a, b float64) float64 { return a * b },
				)
			},
		},
		"=": {
			TypeFn: func(types []prism.Type) (prism.Type, bool) {
				if len(types) != 2 {
					return prism.Type{}, false
				}
				return prism.Boolean, true
			},
			Strict: true,
			Function: func(values []prism.Value) (prism.Value, error) {
				return prism.NewBoolean(values[0].Compare(values[1]) == 0), nil
			},
		},
		">": {
			TypeFn: sameComparableTypes(2, prism.Boolean),
			Strict: true,
			Function: func(values []prism.Value) (prism.Value, error) {
				return prism.NewBoolean(values[0].Compare(values[1]) > 0), nil
			},
		},
		"<": {
			TypeFn: sameComparableTypes(2, prism.Boolean),
			Strict: true,
			Function: func(values []prism.Value) (prism.Value, error) {
				return prism.NewBoolean(values[0].Compare(values[1]) < 0), nil
			},
		},
		"clip": {
			TypeFn: clipTypes(3),
			Strict: false,
			Function: func(values []prism.Value) (prism.Value, error) {
				return Clip(values[0], values[1], values[2])
			},
		},
		"clip_min": {
			TypeFn: clipTypes(2),
			Strict: false,
			Function: func(values []prism.Value) (prism.Value, error) {
				return ClipMin(values[0], values[1])
			},
		},
		"clip_max": {
			TypeFn: clipTypes(2),
			Strict: false,
			Function: func(values []prism.Value) (prism.Value, error) {
				return ClipMax(values[0], values[1])
			},
		},
	}
}

func isNumeric(t prism.Type) bool {
	return t.TypeID == prism.TypeIDInt || t.TypeID == prism.TypeIDFloat
}

// sameNumericTypes accepts argCount numeric arguments of one shared type and
// returns that type.
func sameNumericTypes(argCount int) func(types []prism.Type) (prism.Type, bool) {
	return func(types []prism.Type) (prism.Type, bool) {
		if len(types) != argCount {
			return prism.Type{}, false
		}
		if !isNumeric(types[0]) {
			return prism.Type{}, false
		}
		for _, t := range types[1:] {
			if t.TypeID != types[0].TypeID {
				return prism.Type{}, false
			}
		}
		return types[0], true
	}
}

// clipTypes accepts argCount arguments of one shared numeric type, where any
// argument may also be null: a null bound means that side is unbounded and a
// null input stays null.
func clipTypes(argCount int) func(types []prism.Type) (prism.Type, bool) {
	return func(types []prism.Type) (prism.Type, bool) {
		if len(types) != argCount {
			return prism.Type{}, false
		}
		out := prism.Null
		for _, t := range types {
			if t.TypeID == prism.TypeIDNull {
				continue
			}
			if !isNumeric(t) {
				return prism.Type{}, false
			}
			if out.TypeID == prism.TypeIDNull {
				out = t
			} else if t.TypeID != out.TypeID {
				return prism.Type{}, false
			}
		}
		return out, true
	}
}

func sameComparableTypes(argCount int, out prism.Type) func(types []prism.Type) (prism.Type, bool) {
	return func(types []prism.Type) (prism.Type, bool) {
		if len(types) != argCount {
			return prism.Type{}, false
		}
		for _, t := range types[1:] {
			if t.TypeID != types[0].TypeID {
				return prism.Type{}, false
			}
		}
		return out, true
	}
}

func numericBinary(left, right prism.Value, intOp func(a, b int) int, floatOp func(a, b float64) float64) (prism.Value, error) {
	switch left.Type.TypeID {
	case prism.TypeIDInt:
		return prism.NewInt(intOp(left.Int, right.Int)), nil
	case prism.TypeIDFloat:
		return prism.NewFloat(floatOp(left.Float, right.Float)), nil
	}
	return prism.Value{}, fmt.Errorf("unsupported operand type: %s", left.Type)
}
