package optimizer

import (
	"github.com/prismql/prism/plan"
)

// ProjectionContext carries the projections accumulated while descending
// towards the data sources: the expressions the consumer above requires from
// the current node's output, together with the derived set of raw column
// names for membership tests. An empty accumulated set means "no specific
// columns requested" and handlers treat it as a request for everything the
// node can produce.
//
// A context is built fresh for every child and is never shared between
// sibling branches.
type ProjectionContext struct {
	acc   []plan.ExprNode
	names map[string]struct{}
	inner InnerContext
}

// InnerContext tracks state that survives scope boundaries, e.g. whether the
// accumulated projections originate from a sub-plan embedded in an
// expression of an enclosing scope.
type InnerContext struct {
	IsSubScope bool
}

func newProjectionContext(acc []plan.ExprNode, names map[string]struct{}, inner InnerContext) ProjectionContext {
	if names == nil {
		names = make(map[string]struct{})
	}
	return ProjectionContext{
		acc:   acc,
		names: names,
		inner: inner,
	}
}

// contextFromSplit builds the context pushed into a child after a split: the
// forwardable expressions plus an explicit column request for every required
// name not already covered by them.
func contextFromSplit(forwardable []plan.ExprNode, requiredNames []string, inner InnerContext, exprs *plan.ExprArena) ProjectionContext {
	acc := make([]plan.ExprNode, len(forwardable))
	copy(acc, forwardable)
	ctx := newProjectionContext(acc, nil, inner)
	for _, e := range forwardable {
		if name, ok := exprs.ColumnName(e); ok {
			ctx.names[name] = struct{}{}
		}
	}
	for _, name := range requiredNames {
		addColumnToAccumulated(name, &ctx, exprs)
	}
	return ctx
}

func (ctx ProjectionContext) hasProjections() bool {
	return len(ctx.acc) > 0
}

func (ctx ProjectionContext) hasName(name string) bool {
	_, ok := ctx.names[name]
	return ok
}

// restarted returns the context used below a pushdown boundary: no column
// constraints, i.e. everything is requested.
func (ctx ProjectionContext) restarted() ProjectionContext {
	return newProjectionContext(nil, nil, ctx.inner)
}

// splitAccProjections partitions the accumulated projections against the
// schema of the child under the node being rewritten.
//
// Forwardable expressions are bare column references present in the child
// schema; they can be requested from the child as-is. Everything else is
// local: it references columns that only exist post-transform, or it is a
// composite expression that must be evaluated above the node under
// construction. requiredNames is the flattened list of raw columns that must
// be fetched from the child to satisfy either group.
//
// Order within each returned group follows the input order.
func splitAccProjections(acc []plan.ExprNode, childSchema plan.Schema, exprs *plan.ExprArena) (forwardable, local []plan.ExprNode, requiredNames []string) {
	seen := make(map[string]struct{})
	addName := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		if _, present := childSchema.Field(name); !present {
			return
		}
		seen[name] = struct{}{}
		requiredNames = append(requiredNames, name)
	}

	for _, e := range acc {
		if name, ok := exprs.ColumnName(e); ok {
			if _, present := childSchema.Field(name); present {
				forwardable = append(forwardable, e)
				addName(name)
				continue
			}
		}
		local = append(local, e)
		for _, name := range exprs.CollectColumns(e) {
			addName(name)
		}
	}
	return forwardable, local, requiredNames
}

// addColumnToAccumulated requests one more raw column from the node the
// context will be pushed into. Adding an already-present column is a no-op.
func addColumnToAccumulated(name string, ctx *ProjectionContext, exprs *plan.ExprArena) {
	if ctx.hasName(name) {
		return
	}
	ctx.acc = append(ctx.acc, exprs.Add(plan.NewColumn(name)))
	ctx.names[name] = struct{}{}
}
