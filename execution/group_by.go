package execution

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/prismql/prism/prism"
)

// GroupBy buffers the whole input, grouping by the key columns, and emits
// one record per group in key order.
type GroupBy struct {
	source              Node
	keyColumns          []int
	aggregateColumns    []int
	aggregatePrototypes []func() Aggregate
}

func NewGroupBy(source Node, keyColumns, aggregateColumns []int, aggregatePrototypes []func() Aggregate) *GroupBy {
	return &GroupBy{
		source:              source,
		keyColumns:          keyColumns,
		aggregateColumns:    aggregateColumns,
		aggregatePrototypes: aggregatePrototypes,
	}
}

type groupByItem struct {
	Key        []prism.Value
	Aggregates []Aggregate
}

func (g *GroupBy) Run(ctx ExecutionContext, produce ProduceFn) error {
	groups := btree.NewGenericOptions(func(item, than *groupByItem) bool {
		return compareValueSlices(item.Key, than.Key) == -1
	}, btree.Options{
		NoLocks: true,
	})

	if err := g.source.Run(ctx, func(produceCtx ProduceContext, record Record) error {
		key := make([]prism.Value, len(g.keyColumns))
		for i, keyColumn := range g.keyColumns {
			key[i] = record.Values[keyColumn]
		}
		item, ok := groups.Get(&groupByItem{Key: key})
		if !ok {
			aggregates := make([]Aggregate, len(g.aggregatePrototypes))
			for i := range g.aggregatePrototypes {
				aggregates[i] = g.aggregatePrototypes[i]()
			}
			item = &groupByItem{
				Key:        key,
				Aggregates: aggregates,
			}
			groups.Set(item)
		}
		for i, aggregateColumn := range g.aggregateColumns {
			item.Aggregates[i].Add(record.Values[aggregateColumn])
		}
		return nil
	}); err != nil {
		return fmt.Errorf("couldn't run source: %w", err)
	}

	var produceErr error
	groups.Scan(func(item *groupByItem) bool {
		values := make([]prism.Value, 0, len(item.Key)+len(item.Aggregates))
		values = append(values, item.Key...)
		for i := range item.Aggregates {
			values = append(values, item.Aggregates[i].Result())
		}
		if err := produce(ProduceFromExecutionContext(ctx), NewRecord(values)); err != nil {
			produceErr = fmt.Errorf("couldn't produce: %w", err)
			return false
		}
		return true
	})
	return produceErr
}
