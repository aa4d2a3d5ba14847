package plan

import "fmt"

// Node is a stable handle to a plan IR entry in an Arena.
type Node int

// ExprNode is a stable handle to an expression IR entry in an ExprArena.
type ExprNode int

// Arena is an append-only store of plan IR entries. Entries are values and
// are never modified through a handle; rewrites append new entries or
// reassign a slot wholesale via Replace.
type Arena struct {
	entries []IR
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) Add(ir IR) Node {
	a.entries = append(a.entries, ir)
	return Node(len(a.entries) - 1)
}

func (a *Arena) Get(node Node) IR {
	if int(node) < 0 || int(node) >= len(a.entries) {
		panic(fmt.Sprintf("invalid plan node handle: %d", node))
	}
	return a.entries[node]
}

// Replace reassigns the slot behind the handle to a new entry. The previous
// entry is returned so callers can keep referring to its contents.
func (a *Arena) Replace(node Node, ir IR) IR {
	old := a.Get(node)
	a.entries[node] = ir
	return old
}

func (a *Arena) Len() int {
	return len(a.entries)
}

// ExprArena is an append-only store of expression IR entries, with the same
// handle discipline as Arena.
type ExprArena struct {
	entries []Expr
}

func NewExprArena() *ExprArena {
	return &ExprArena{}
}

func (a *ExprArena) Add(expr Expr) ExprNode {
	a.entries = append(a.entries, expr)
	return ExprNode(len(a.entries) - 1)
}

func (a *ExprArena) Get(node ExprNode) Expr {
	if int(node) < 0 || int(node) >= len(a.entries) {
		panic(fmt.Sprintf("invalid expression node handle: %d", node))
	}
	return a.entries[node]
}

func (a *ExprArena) Len() int {
	return len(a.entries)
}
