package execution

import (
	"fmt"

	"github.com/prismql/prism/prism"
)

type Filter struct {
	source    Node
	predicate Expression
}

func NewFilter(source Node, predicate Expression) *Filter {
	return &Filter{
		source:    source,
		predicate: predicate,
	}
}

func (f *Filter) Run(ctx ExecutionContext, produce ProduceFn) error {
	if err := f.source.Run(ctx, func(produceCtx ProduceContext, record Record) error {
		ok, err := f.predicate.Evaluate(record)
		if err != nil {
			return fmt.Errorf("couldn't evaluate filter predicate: %w", err)
		}
		if ok.Type.TypeID != prism.TypeIDBoolean || !ok.Boolean {
			return nil
		}
		if err := produce(produceCtx, record); err != nil {
			return fmt.Errorf("couldn't produce: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("couldn't run source: %w", err)
	}
	return nil
}
