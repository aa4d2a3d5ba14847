package execution

import (
	"fmt"

	"github.com/prismql/prism/prism"
)

// Aggregate accumulates one group's values for a single aggregate column.
type Aggregate interface {
	Add(value prism.Value)
	Result() prism.Value
}

// NewAggregatePrototype returns a constructor for the named aggregate, or
// false if the name is unknown.
func NewAggregatePrototype(name string) (func() Aggregate, bool) {
	switch name {
	case "count":
		return func() Aggregate { return &countAggregate{} }, true
	case "sum":
		return func() Aggregate { return &sumAggregate{} }, true
	case "min":
		return func() Aggregate { return &minAggregate{} }, true
	case "max":
		return func() Aggregate { return &maxAggregate{} }, true
	}
	return nil, false
}

// AggregateOutputType returns the output type of the named aggregate given
// its input column type.
func AggregateOutputType(name string, inputType prism.Type) (prism.Type, error) {
	switch name {
	case "count":
		return prism.Int, nil
	case "sum", "min", "max":
		return inputType, nil
	}
	return prism.Type{}, fmt.Errorf("unknown aggregate: '%s'", name)
}

type countAggregate struct {
	count int
}

func (agg *countAggregate) Add(value prism.Value) {
	if value.Type.TypeID == prism.TypeIDNull {
		return
	}
	agg.count++
}

func (agg *countAggregate) Result() prism.Value {
	return prism.NewInt(agg.count)
}

type sumAggregate struct {
	sum   prism.Value
	empty bool
	init  bool
}

func (agg *sumAggregate) Add(value prism.Value) {
	if value.Type.TypeID == prism.TypeIDNull {
		return
	}
	if !agg.init {
		agg.sum = value
		agg.init = true
		return
	}
	switch value.Type.TypeID {
	case prism.TypeIDInt:
		agg.sum = prism.NewInt(agg.sum.Int + value.Int)
	case prism.TypeIDFloat:
		agg.sum = prism.NewFloat(agg.sum.Float + value.Float)
	}
}

func (agg *sumAggregate) Result() prism.Value {
	if !agg.init {
		return prism.NewNull()
	}
	return agg.sum
}

type minAggregate struct {
	min  prism.Value
	init bool
}

func (agg *minAggregate) Add(value prism.Value) {
	if value.Type.TypeID == prism.TypeIDNull {
		return
	}
	if !agg.init || value.Compare(agg.min) < 0 {
		agg.min = value
		agg.init = true
	}
}

func (agg *minAggregate) Result() prism.Value {
	if !agg.init {
		return prism.NewNull()
	}
	return agg.min
}

type maxAggregate struct {
	max  prism.Value
	init bool
}

func (agg *maxAggregate) Add(value prism.Value) {
	if value.Type.TypeID == prism.TypeIDNull {
		return
	}
	if !agg.init || value.Compare(agg.max) > 0 {
		agg.max = value
		agg.init = true
	}
}

func (agg *maxAggregate) Result() prism.Value {
	if !agg.init {
		return prism.NewNull()
	}
	return agg.max
}
