package optimizer

import (
	"github.com/prismql/prism/plan"
)

// pushdownUnpivot handles the unpivot node. Its output mixes passthrough
// index columns with synthesized variable/value columns, so composite
// expressions requested from above can't be pushed below it; they end up in
// an explicit projection applied after the rebuilt node instead.
func (p *ProjectionPushdown) pushdownUnpivot(ir plan.IR, ctx ProjectionContext, plans *plan.Arena, exprs *plan.ExprArena) (plan.IR, error) {
	unpivot := ir.Unpivot

	if len(unpivot.Args.On) == 0 {
		// The melted column set is "all non-index columns of the input",
		// which depends on the runtime schema, so the required input columns
		// can't be determined statically. Restart pushdown below this node.
		return p.noPushdownRestart(ir, ctx, plans, exprs)
	}

	childSchema, err := plan.ComputeSchema(unpivot.Source, plans, exprs)
	if err != nil {
		return plan.IR{}, err
	}

	forwardable, local, requiredNames := splitAccProjections(ctx.acc, childSchema, exprs)

	// Bare references to the synthesized variable/value columns land in the
	// local group because they don't exist pre-transform, but the rebuilt node
	// satisfies them directly. Only genuinely local expressions force a
	// projection wrap.
	needsWrap := false
	for _, e := range local {
		if name, ok := exprs.ColumnName(e); ok {
			if name == unpivot.Args.VariableColumn() || name == unpivot.Args.ValueColumn() {
				continue
			}
		}
		needsWrap = true
		break
	}
	if needsWrap {
		local = append(local, forwardable...)
	} else {
		local = nil
	}
	childCtx := contextFromSplit(forwardable, requiredNames, ctx.inner, exprs)

	// The index and on columns are structurally required by the unpivot,
	// whether or not anything above asked for them.
	for _, name := range unpivot.Args.Index {
		addColumnToAccumulated(name, &childCtx, exprs)
	}
	for _, name := range unpivot.Args.On {
		addColumnToAccumulated(name, &childCtx, exprs)
	}

	if err := p.pushdownAndAssign(unpivot.Source, childCtx, plans, exprs); err != nil {
		return plan.IR{}, err
	}

	// Re-make the unpivot node so that its schema reflects the rewritten
	// child.
	rebuilt, err := plan.NewBuilder(unpivot.Source, plans, exprs).Unpivot(unpivot.Args)
	if err != nil {
		return plan.IR{}, err
	}

	if len(local) == 0 {
		return rebuilt, nil
	}
	return plan.FromIR(rebuilt, plans, exprs).ProjectSimple(local)
}
