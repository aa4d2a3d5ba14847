package execution

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/prismql/prism/prism"
)

// Join is an inner equi-join. The right side is read fully into an ordered
// index before the left side is streamed through it.
type Join struct {
	left, right       Node
	leftKey, rightKey []Expression
}

func NewJoin(left, right Node, leftKey, rightKey []Expression) *Join {
	return &Join{
		left:     left,
		right:    right,
		leftKey:  leftKey,
		rightKey: rightKey,
	}
}

type joinItem struct {
	Key     []prism.Value
	Records []Record
}

func compareValueSlices(a, b []prism.Value) int {
	for i := 0; i < len(a); i++ {
		if comp := a[i].Compare(b[i]); comp != 0 {
			return comp
		}
	}
	return 0
}

func (j *Join) Run(ctx ExecutionContext, produce ProduceFn) error {
	index := btree.NewGenericOptions(func(item, than *joinItem) bool {
		return compareValueSlices(item.Key, than.Key) == -1
	}, btree.Options{
		NoLocks: true,
	})

	if err := j.right.Run(ctx, func(produceCtx ProduceContext, record Record) error {
		key, err := evaluateKey(j.rightKey, record)
		if err != nil {
			return fmt.Errorf("couldn't evaluate right key: %w", err)
		}
		item, ok := index.Get(&joinItem{Key: key})
		if !ok {
			item = &joinItem{Key: key}
		}
		item.Records = append(item.Records, record)
		index.Set(item)
		return nil
	}); err != nil {
		return fmt.Errorf("couldn't run right source: %w", err)
	}

	if err := j.left.Run(ctx, func(produceCtx ProduceContext, record Record) error {
		key, err := evaluateKey(j.leftKey, record)
		if err != nil {
			return fmt.Errorf("couldn't evaluate left key: %w", err)
		}
		item, ok := index.Get(&joinItem{Key: key})
		if !ok {
			return nil
		}
		for _, rightRecord := range item.Records {
			values := make([]prism.Value, 0, len(record.Values)+len(rightRecord.Values))
			values = append(values, record.Values...)
			values = append(values, rightRecord.Values...)
			if err := produce(produceCtx, NewRecord(values)); err != nil {
				return fmt.Errorf("couldn't produce: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("couldn't run left source: %w", err)
	}
	return nil
}

func evaluateKey(key []Expression, record Record) ([]prism.Value, error) {
	out := make([]prism.Value, len(key))
	for i := range key {
		value, err := key[i].Evaluate(record)
		if err != nil {
			return nil, fmt.Errorf("couldn't evaluate key expression %d: %w", i, err)
		}
		out[i] = value
	}
	return out, nil
}
