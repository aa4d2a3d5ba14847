package optimizer

import (
	"fmt"

	"github.com/prismql/prism/plan"
)

// ProjectionPushdown rewrites a plan so that every node materializes only
// the columns its consumers actually use. The root output schema and column
// order are preserved exactly; pruning happens strictly below the root's
// requirements.
type ProjectionPushdown struct{}

func (p *ProjectionPushdown) Name() string {
	return "projection_pushdown"
}

// Optimize rewrites the subtree rooted at root in place, slot by slot. The
// initial context requests everything, so the root's own output is left
// untouched.
func (p *ProjectionPushdown) Optimize(root plan.Node, plans *plan.Arena, exprs *plan.ExprArena) error {
	ctx := newProjectionContext(nil, nil, InnerContext{})
	return p.pushdownAndAssign(root, ctx, plans, exprs)
}

// pushdownAndAssign rewrites the subtree behind the handle and reassigns the
// arena slot to the rewritten node, so that all existing references to the
// handle observe the new subtree.
func (p *ProjectionPushdown) pushdownAndAssign(node plan.Node, ctx ProjectionContext, plans *plan.Arena, exprs *plan.ExprArena) error {
	ir := plans.Get(node)
	out, err := p.pushdown(ir, ctx, plans, exprs)
	if err != nil {
		return err
	}
	plans.Replace(node, out)
	return nil
}

// pushdown dispatches on the node kind. Kinds without a dedicated handler
// fall back to noPushdownRestart; that is control flow, not an error.
func (p *ProjectionPushdown) pushdown(ir plan.IR, ctx ProjectionContext, plans *plan.Arena, exprs *plan.ExprArena) (plan.IR, error) {
	switch ir.IRType {
	case plan.IRTypeScan:
		return p.pushdownScan(ir, ctx)
	case plan.IRTypeSimpleProjection:
		return p.pushdownSimpleProjection(ir, ctx, plans, exprs)
	case plan.IRTypeFilter:
		return p.pushdownFilter(ir, ctx, plans, exprs)
	case plan.IRTypeUnpivot:
		return p.pushdownUnpivot(ir, ctx, plans, exprs)
	case plan.IRTypeSlice:
		return p.pushdownSlice(ir, ctx, plans, exprs)
	case plan.IRTypeDistinct, plan.IRTypeJoin, plan.IRTypeGroupBy:
		// Distinct changes row multiplicity when columns are dropped, and
		// join/group by requirements are not statically analyzable here.
		return p.noPushdownRestart(ir, ctx, plans, exprs)
	default:
		return p.noPushdownRestart(ir, ctx, plans, exprs)
	}
}

// noPushdownRestart treats the node as a pushdown boundary: the context's
// column constraints are discarded and each child subtree is rewritten as if
// the pass started there, so nothing below is pruned by requirements from
// above. Conservative, always correct.
func (p *ProjectionPushdown) noPushdownRestart(ir plan.IR, ctx ProjectionContext, plans *plan.Arena, exprs *plan.ExprArena) (plan.IR, error) {
	for _, child := range ir.Children() {
		if err := p.pushdownAndAssign(child, ctx.restarted(), plans, exprs); err != nil {
			return plan.IR{}, err
		}
	}
	// Recompute the schema to surface invariant violations eagerly.
	if _, err := plan.ComputeSchemaIR(ir, plans, exprs); err != nil {
		return plan.IR{}, fmt.Errorf("couldn't rebuild %s node after pushdown restart: %w", ir.IRType, err)
	}
	return ir, nil
}

// pushdownScan narrows the scan's projection to the requested columns,
// keeping the table schema's column order.
func (p *ProjectionPushdown) pushdownScan(ir plan.IR, ctx ProjectionContext) (plan.IR, error) {
	if !ctx.hasProjections() {
		return ir, nil
	}
	scan := *ir.Scan

	base := scan.TableSchema.Names()
	if scan.Projection != nil {
		base = scan.Projection
	}
	projection := make([]string, 0, len(base))
	for _, name := range base {
		if ctx.hasName(name) {
			projection = append(projection, name)
		}
	}
	scan.Projection = projection

	return plan.IR{
		IRType: plan.IRTypeScan,
		Scan:   &scan,
	}, nil
}

// pushdownSimpleProjection prunes the expression list to what the consumer
// requires and starts a fresh context from the surviving expressions' input
// columns.
func (p *ProjectionPushdown) pushdownSimpleProjection(ir plan.IR, ctx ProjectionContext, plans *plan.Arena, exprs *plan.ExprArena) (plan.IR, error) {
	projection := ir.SimpleProjection

	kept := projection.Expressions
	if ctx.hasProjections() {
		kept = make([]plan.ExprNode, 0, len(projection.Expressions))
		for _, e := range projection.Expressions {
			if ctx.hasName(exprs.OutputName(e)) {
				kept = append(kept, e)
			}
		}
	}

	childCtx := newProjectionContext(nil, nil, ctx.inner)
	for _, e := range kept {
		for _, name := range exprs.CollectColumns(e) {
			addColumnToAccumulated(name, &childCtx, exprs)
		}
	}

	if err := p.pushdownAndAssign(projection.Source, childCtx, plans, exprs); err != nil {
		return plan.IR{}, err
	}
	return plan.NewBuilder(projection.Source, plans, exprs).ProjectSimple(kept)
}

// pushdownFilter forwards the accumulated projections together with the
// columns the predicate needs. If that over-fetches relative to what the
// consumer asked for, the requested shape is restored with an explicit
// projection above the rebuilt filter.
func (p *ProjectionPushdown) pushdownFilter(ir plan.IR, ctx ProjectionContext, plans *plan.Arena, exprs *plan.ExprArena) (plan.IR, error) {
	filter := ir.Filter

	if !ctx.hasProjections() {
		if err := p.pushdownAndAssign(filter.Source, ctx.restarted(), plans, exprs); err != nil {
			return plan.IR{}, err
		}
		return plan.NewBuilder(filter.Source, plans, exprs).Filter(filter.Predicate)
	}

	childSchema, err := plan.ComputeSchema(filter.Source, plans, exprs)
	if err != nil {
		return plan.IR{}, err
	}
	forwardable, local, requiredNames := splitAccProjections(ctx.acc, childSchema, exprs)
	if len(local) > 0 {
		local = append(local, forwardable...)
	}
	childCtx := contextFromSplit(forwardable, requiredNames, ctx.inner, exprs)

	overFetched := false
	for _, name := range exprs.CollectColumns(filter.Predicate) {
		if !childCtx.hasName(name) {
			addColumnToAccumulated(name, &childCtx, exprs)
			overFetched = true
		}
	}

	if err := p.pushdownAndAssign(filter.Source, childCtx, plans, exprs); err != nil {
		return plan.IR{}, err
	}
	rebuilt, err := plan.NewBuilder(filter.Source, plans, exprs).Filter(filter.Predicate)
	if err != nil {
		return plan.IR{}, err
	}

	if len(local) > 0 {
		return plan.FromIR(rebuilt, plans, exprs).ProjectSimple(local)
	}
	if overFetched {
		return plan.FromIR(rebuilt, plans, exprs).ProjectSimple(forwardable)
	}
	return rebuilt, nil
}

// pushdownSlice passes the context through: slicing is row-positional and
// indifferent to which columns are materialized.
func (p *ProjectionPushdown) pushdownSlice(ir plan.IR, ctx ProjectionContext, plans *plan.Arena, exprs *plan.ExprArena) (plan.IR, error) {
	slice := ir.Slice

	if !ctx.hasProjections() {
		if err := p.pushdownAndAssign(slice.Source, ctx.restarted(), plans, exprs); err != nil {
			return plan.IR{}, err
		}
		return plan.NewBuilder(slice.Source, plans, exprs).Slice(slice.Offset, slice.Limit)
	}

	childSchema, err := plan.ComputeSchema(slice.Source, plans, exprs)
	if err != nil {
		return plan.IR{}, err
	}
	forwardable, local, requiredNames := splitAccProjections(ctx.acc, childSchema, exprs)
	if len(local) > 0 {
		local = append(local, forwardable...)
	}
	childCtx := contextFromSplit(forwardable, requiredNames, ctx.inner, exprs)

	if err := p.pushdownAndAssign(slice.Source, childCtx, plans, exprs); err != nil {
		return plan.IR{}, err
	}
	rebuilt, err := plan.NewBuilder(slice.Source, plans, exprs).Slice(slice.Offset, slice.Limit)
	if err != nil {
		return plan.IR{}, err
	}

	if len(local) > 0 {
		return plan.FromIR(rebuilt, plans, exprs).ProjectSimple(local)
	}
	return rebuilt, nil
}
