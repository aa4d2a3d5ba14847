package execution

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/prismql/prism/prism"
)

type Distinct struct {
	source Node
}

func NewDistinct(source Node) *Distinct {
	return &Distinct{
		source: source,
	}
}

type distinctItem struct {
	Values []prism.Value
}

func (d *Distinct) Run(ctx ExecutionContext, produce ProduceFn) error {
	seen := btree.NewGenericOptions(func(item, than *distinctItem) bool {
		for i := 0; i < len(item.Values); i++ {
			if comp := item.Values[i].Compare(than.Values[i]); comp != 0 {
				return comp == -1
			}
		}
		return false
	}, btree.Options{
		NoLocks: true,
	})
	if err := d.source.Run(ctx, func(produceCtx ProduceContext, record Record) error {
		if _, ok := seen.Get(&distinctItem{Values: record.Values}); ok {
			return nil
		}
		seen.Set(&distinctItem{Values: record.Values})
		if err := produce(produceCtx, record); err != nil {
			return fmt.Errorf("couldn't produce: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("couldn't run source: %w", err)
	}
	return nil
}
