package execution

import (
	"fmt"

	"github.com/prismql/prism/prism"
)

type Map struct {
	source Node
	exprs  []Expression
}

func NewMap(source Node, exprs []Expression) *Map {
	return &Map{
		source: source,
		exprs:  exprs,
	}
}

func (m *Map) Run(ctx ExecutionContext, produce ProduceFn) error {
	if err := m.source.Run(ctx, func(produceCtx ProduceContext, record Record) error {
		values := make([]prism.Value, len(m.exprs))
		for i, expr := range m.exprs {
			value, err := expr.Evaluate(record)
			if err != nil {
				return fmt.Errorf("couldn't evaluate map expression %d: %w", i, err)
			}
			values[i] = value
		}
		if err := produce(produceCtx, NewRecord(values)); err != nil {
			return fmt.Errorf("couldn't produce: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("couldn't run source: %w", err)
	}
	return nil
}
