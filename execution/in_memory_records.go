package execution

import (
	"fmt"

	"github.com/prismql/prism/prism"
)

type InMemoryRecords struct {
	records []Record
	// columns are the indices read from each stored record, in output order.
	columns []int
}

func NewInMemoryRecords(records []Record, columns []int) *InMemoryRecords {
	return &InMemoryRecords{
		records: records,
		columns: columns,
	}
}

func (r *InMemoryRecords) Run(ctx ExecutionContext, produce ProduceFn) error {
	for i := range r.records {
		values := make([]prism.Value, len(r.columns))
		for outIndex, recordIndex := range r.columns {
			values[outIndex] = r.records[i].Values[recordIndex]
		}
		if err := produce(ProduceFromExecutionContext(ctx), NewRecord(values)); err != nil {
			return fmt.Errorf("couldn't produce record: %w", err)
		}
	}
	return nil
}
