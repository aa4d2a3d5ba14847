package execution

import (
	"fmt"

	"github.com/prismql/prism/prism"
)

// Unpivot melts the on columns of each input record into variable/value row
// pairs, repeating the index columns.
type Unpivot struct {
	source       Node
	indexColumns []int
	onColumns    []int
	onNames      []string
}

func NewUnpivot(source Node, indexColumns, onColumns []int, onNames []string) *Unpivot {
	return &Unpivot{
		source:       source,
		indexColumns: indexColumns,
		onColumns:    onColumns,
		onNames:      onNames,
	}
}

func (u *Unpivot) Run(ctx ExecutionContext, produce ProduceFn) error {
	if err := u.source.Run(ctx, func(produceCtx ProduceContext, record Record) error {
		for i, onColumn := range u.onColumns {
			values := make([]prism.Value, 0, len(u.indexColumns)+2)
			for _, indexColumn := range u.indexColumns {
				values = append(values, record.Values[indexColumn])
			}
			values = append(values, prism.NewString(u.onNames[i]), record.Values[onColumn])
			if err := produce(produceCtx, NewRecord(values)); err != nil {
				return fmt.Errorf("couldn't produce: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("couldn't run source: %w", err)
	}
	return nil
}
