package execution

import (
	"context"

	"github.com/prismql/prism/plan"
	"github.com/prismql/prism/prism"
)

type Record struct {
	Values []prism.Value
}

func NewRecord(values []prism.Value) Record {
	return Record{
		Values: values,
	}
}

type ExecutionContext struct {
	Context context.Context
}

type ProduceContext struct {
	Context context.Context
}

func ProduceFromExecutionContext(ctx ExecutionContext) ProduceContext {
	return ProduceContext{
		Context: ctx.Context,
	}
}

type ProduceFn func(ctx ProduceContext, record Record) error

// Node produces a stream of records into the produce callback. A run is
// synchronous; when Run returns, the stream is finished.
type Node interface {
	Run(ctx ExecutionContext, produce ProduceFn) error
}

// Environment provides the tables plan scans read from.
type Environment struct {
	Tables map[string]*Table
}

type Table struct {
	Schema  plan.Schema
	Records []Record
}
