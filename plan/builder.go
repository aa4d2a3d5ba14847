package plan

import (
	"github.com/pkg/errors"
)

// Builder assembles new plan nodes on top of an existing subtree. Every
// constructor validates the schema of the node it produces, so a rewrite
// that would reference a missing column fails here with ErrSchemaMismatch
// instead of surfacing later during materialization.
//
// Terminal constructors return the IR value without adding it to the arena;
// the caller decides which slot it lands in. FromIR adds an intermediate
// node so further building can refer to it by handle.
type Builder struct {
	root  Node
	plans *Arena
	exprs *ExprArena
}

func NewBuilder(root Node, plans *Arena, exprs *ExprArena) Builder {
	return Builder{
		root:  root,
		plans: plans,
		exprs: exprs,
	}
}

// FromIR appends the given node to the arena and returns a Builder rooted at
// the new entry.
func FromIR(ir IR, plans *Arena, exprs *ExprArena) Builder {
	return Builder{
		root:  plans.Add(ir),
		plans: plans,
		exprs: exprs,
	}
}

func (b Builder) Root() Node {
	return b.root
}

func (b Builder) Unpivot(args UnpivotArgs) (IR, error) {
	out := IR{
		IRType: IRTypeUnpivot,
		Unpivot: &Unpivot{
			Source: b.root,
			Args:   args,
		},
	}
	if _, err := computeSchemaIR(out, b.plans, b.exprs); err != nil {
		return IR{}, errors.Wrap(err, "couldn't rebuild unpivot node")
	}
	return out, nil
}

func (b Builder) ProjectSimple(expressions []ExprNode) (IR, error) {
	out := IR{
		IRType: IRTypeSimpleProjection,
		SimpleProjection: &SimpleProjection{
			Source:      b.root,
			Expressions: expressions,
		},
	}
	if _, err := computeSchemaIR(out, b.plans, b.exprs); err != nil {
		return IR{}, errors.Wrap(err, "couldn't build projection node")
	}
	return out, nil
}

func (b Builder) Filter(predicate ExprNode) (IR, error) {
	out := IR{
		IRType: IRTypeFilter,
		Filter: &Filter{
			Source:    b.root,
			Predicate: predicate,
		},
	}
	if _, err := computeSchemaIR(out, b.plans, b.exprs); err != nil {
		return IR{}, errors.Wrap(err, "couldn't rebuild filter node")
	}
	return out, nil
}

func (b Builder) Distinct() (IR, error) {
	out := IR{
		IRType: IRTypeDistinct,
		Distinct: &Distinct{
			Source: b.root,
		},
	}
	if _, err := computeSchemaIR(out, b.plans, b.exprs); err != nil {
		return IR{}, errors.Wrap(err, "couldn't rebuild distinct node")
	}
	return out, nil
}

func (b Builder) Slice(offset, limit int) (IR, error) {
	out := IR{
		IRType: IRTypeSlice,
		Slice: &Slice{
			Source: b.root,
			Offset: offset,
			Limit:  limit,
		},
	}
	if _, err := computeSchemaIR(out, b.plans, b.exprs); err != nil {
		return IR{}, errors.Wrap(err, "couldn't rebuild slice node")
	}
	return out, nil
}
