package plan

import (
	"fmt"
	"strings"

	"github.com/prismql/prism/graph"
)

// DescribeNode renders a plan subtree for visualization. With schema info
// enabled, every node carries its computed output schema, which makes
// projection pruning visible in the rendered graph.
func DescribeNode(node Node, plans *Arena, exprs *ExprArena, withSchemaInfo bool) *graph.Node {
	ir := plans.Get(node)

	var out *graph.Node
	switch ir.IRType {
	case IRTypeScan:
		out = graph.NewNode(ir.Scan.Table)
		if ir.Scan.Projection != nil {
			out.AddField("projection", strings.Join(ir.Scan.Projection, ", "))
		}

	case IRTypeSimpleProjection:
		out = graph.NewNode("projection")
		expressions := make([]string, len(ir.SimpleProjection.Expressions))
		for i, expr := range ir.SimpleProjection.Expressions {
			expressions[i] = exprs.DescribeExpr(expr)
		}
		out.AddField("expressions", strings.Join(expressions, ", "))
		out.AddChild("source", DescribeNode(ir.SimpleProjection.Source, plans, exprs, withSchemaInfo))

	case IRTypeFilter:
		out = graph.NewNode("filter")
		out.AddField("predicate", exprs.DescribeExpr(ir.Filter.Predicate))
		out.AddChild("source", DescribeNode(ir.Filter.Source, plans, exprs, withSchemaInfo))

	case IRTypeUnpivot:
		out = graph.NewNode("unpivot")
		out.AddField("index", strings.Join(ir.Unpivot.Args.Index, ", "))
		out.AddField("on", strings.Join(ir.Unpivot.Args.On, ", "))
		out.AddChild("source", DescribeNode(ir.Unpivot.Source, plans, exprs, withSchemaInfo))

	case IRTypeDistinct:
		out = graph.NewNode("distinct")
		out.AddChild("source", DescribeNode(ir.Distinct.Source, plans, exprs, withSchemaInfo))

	case IRTypeSlice:
		out = graph.NewNode("slice")
		out.AddField("offset", fmt.Sprint(ir.Slice.Offset))
		out.AddField("limit", fmt.Sprint(ir.Slice.Limit))
		out.AddChild("source", DescribeNode(ir.Slice.Source, plans, exprs, withSchemaInfo))

	case IRTypeJoin:
		out = graph.NewNode("join")
		leftKey := make([]string, len(ir.Join.LeftKey))
		for i, expr := range ir.Join.LeftKey {
			leftKey[i] = exprs.DescribeExpr(expr)
		}
		rightKey := make([]string, len(ir.Join.RightKey))
		for i, expr := range ir.Join.RightKey {
			rightKey[i] = exprs.DescribeExpr(expr)
		}
		out.AddField("left_key", strings.Join(leftKey, ", "))
		out.AddField("right_key", strings.Join(rightKey, ", "))
		out.AddChild("left", DescribeNode(ir.Join.Left, plans, exprs, withSchemaInfo))
		out.AddChild("right", DescribeNode(ir.Join.Right, plans, exprs, withSchemaInfo))

	case IRTypeGroupBy:
		out = graph.NewNode("group by")
		out.AddField("key", strings.Join(ir.GroupBy.Key, ", "))
		for _, aggregate := range ir.GroupBy.Aggregates {
			out.AddField(aggregate.OutputName, fmt.Sprintf("%s(%s)", aggregate.Name, aggregate.Column))
		}
		out.AddChild("source", DescribeNode(ir.GroupBy.Source, plans, exprs, withSchemaInfo))

	default:
		panic(fmt.Sprintf("unexhaustive node type match: %d", ir.IRType))
	}

	if withSchemaInfo {
		if schema, err := ComputeSchema(node, plans, exprs); err == nil {
			out.AddField("schema", schema.String())
		}
	}

	return out
}
