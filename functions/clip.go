package functions

import (
	"fmt"

	"github.com/prismql/prism/prism"
)

// Clip sets values outside the given boundaries to the boundary value. A
// null boundary leaves that side unbounded; a null input stays null.
func Clip(value, min, max prism.Value) (prism.Value, error) {
	if value.Type.TypeID == prism.TypeIDNull {
		return prism.NewNull(), nil
	}
	if err := ensureNumeric("clip", value); err != nil {
		return prism.Value{}, err
	}
	minNull := min.Type.TypeID == prism.TypeIDNull
	maxNull := max.Type.TypeID == prism.TypeIDNull
	switch {
	case minNull && maxNull:
		return value, nil
	case minNull:
		return ClipMax(value, max)
	case maxNull:
		return ClipMin(value, min)
	}
	out, err := ClipMin(value, min)
	if err != nil {
		return prism.Value{}, err
	}
	return ClipMax(out, max)
}

// ClipMin sets values below the given minimum to the minimum value.
func ClipMin(value, min prism.Value) (prism.Value, error) {
	if value.Type.TypeID == prism.TypeIDNull || min.Type.TypeID == prism.TypeIDNull {
		if value.Type.TypeID == prism.TypeIDNull {
			return prism.NewNull(), nil
		}
		return value, nil
	}
	if err := ensureNumeric("clip_min", value); err != nil {
		return prism.Value{}, err
	}
	if value.Compare(min) < 0 {
		return min, nil
	}
	return value, nil
}

// ClipMax sets values above the given maximum to the maximum value.
func ClipMax(value, max prism.Value) (prism.Value, error) {
	if value.Type.TypeID == prism.TypeIDNull || max.Type.TypeID == prism.TypeIDNull {
		if value.Type.TypeID == prism.TypeIDNull {
			return prism.NewNull(), nil
		}
		return value, nil
	}
	if err := ensureNumeric("clip_max", value); err != nil {
		return prism.Value{}, err
	}
	if value.Compare(max) > 0 {
		return max, nil
	}
	return value, nil
}

func ensureNumeric(name string, value prism.Value) error {
	if !isNumeric(value.Type) {
		return fmt.Errorf("'%s' only supports numeric types, got %s", name, value.Type)
	}
	return nil
}
