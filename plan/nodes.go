package plan

import (
	"github.com/prismql/prism/prism"
)

// IR is a single node of the logical plan. It lives in an Arena and refers
// to its children by handle, never by pointer.
type IR struct {
	IRType IRType
	// Only one of the below may be non-null.
	Scan             *Scan
	SimpleProjection *SimpleProjection
	Filter           *Filter
	Unpivot          *Unpivot
	Distinct         *Distinct
	Slice            *Slice
	Join             *Join
	GroupBy          *GroupBy
}

type IRType int

const (
	IRTypeScan IRType = iota
	IRTypeSimpleProjection
	IRTypeFilter
	IRTypeUnpivot
	IRTypeDistinct
	IRTypeSlice
	IRTypeJoin
	IRTypeGroupBy
)

func (t IRType) String() string {
	switch t {
	case IRTypeScan:
		return "scan"
	case IRTypeSimpleProjection:
		return "projection"
	case IRTypeFilter:
		return "filter"
	case IRTypeUnpivot:
		return "unpivot"
	case IRTypeDistinct:
		return "distinct"
	case IRTypeSlice:
		return "slice"
	case IRTypeJoin:
		return "join"
	case IRTypeGroupBy:
		return "group_by"
	}
	return "unknown"
}

type Scan struct {
	Table       string
	TableSchema Schema
	// Projection limits the scan to the named columns, in the given order.
	// A nil Projection reads the whole table schema.
	Projection []string
}

type SimpleProjection struct {
	Source      Node
	Expressions []ExprNode
}

type Filter struct {
	Source    Node
	Predicate ExprNode
}

type Unpivot struct {
	Source Node
	Args   UnpivotArgs
}

// UnpivotArgs configures the melt of the On columns into variable/value
// pairs, keeping the Index columns. An empty On melts every non-index
// column of the runtime input schema.
type UnpivotArgs struct {
	Index        []string
	On           []string
	VariableName string
	ValueName    string
}

func (args UnpivotArgs) VariableColumn() string {
	if args.VariableName != "" {
		return args.VariableName
	}
	return "variable"
}

func (args UnpivotArgs) ValueColumn() string {
	if args.ValueName != "" {
		return args.ValueName
	}
	return "value"
}

type Distinct struct {
	Source Node
}

type Slice struct {
	Source Node
	Offset int
	// Limit of -1 means no limit.
	Limit int
}

type Join struct {
	Left, Right       Node
	LeftKey, RightKey []ExprNode
}

type GroupBy struct {
	Source     Node
	Key        []string
	Aggregates []Aggregate
}

type Aggregate struct {
	Name       string
	Column     string
	OutputName string
	OutputType prism.Type
}

// Children returns the child handles of a node in left-to-right order.
func (ir IR) Children() []Node {
	switch ir.IRType {
	case IRTypeScan:
		return nil
	case IRTypeSimpleProjection:
		return []Node{ir.SimpleProjection.Source}
	case IRTypeFilter:
		return []Node{ir.Filter.Source}
	case IRTypeUnpivot:
		return []Node{ir.Unpivot.Source}
	case IRTypeDistinct:
		return []Node{ir.Distinct.Source}
	case IRTypeSlice:
		return []Node{ir.Slice.Source}
	case IRTypeJoin:
		return []Node{ir.Join.Left, ir.Join.Right}
	case IRTypeGroupBy:
		return []Node{ir.GroupBy.Source}
	}
	return nil
}
