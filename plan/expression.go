package plan

import (
	"fmt"

	"github.com/prismql/prism/prism"
)

type Expr struct {
	ExprType ExprType
	// Only one of the below may be non-null.
	Column       *Column
	Alias        *Alias
	Literal      *Literal
	FunctionCall *FunctionCall
}

type ExprType int

const (
	ExprTypeColumn ExprType = iota
	ExprTypeAlias
	ExprTypeLiteral
	ExprTypeFunctionCall
)

func (t ExprType) String() string {
	switch t {
	case ExprTypeColumn:
		return "column"
	case ExprTypeAlias:
		return "alias"
	case ExprTypeLiteral:
		return "literal"
	case ExprTypeFunctionCall:
		return "function_call"
	}
	return "unknown"
}

type Column struct {
	Name string
}

type Alias struct {
	Expr ExprNode
	Name string
}

type Literal struct {
	Value prism.Value
}

type FunctionCall struct {
	Name               string
	Arguments          []ExprNode
	FunctionDescriptor FunctionDescriptor
}

// FunctionDescriptor describes a scalar function for both typechecking and
// evaluation. TypeFn returns false if the argument types aren't accepted.
type FunctionDescriptor struct {
	TypeFn   func(types []prism.Type) (prism.Type, bool)
	Strict   bool
	Function func(values []prism.Value) (prism.Value, error)
}

func NewColumn(name string) Expr {
	return Expr{
		ExprType: ExprTypeColumn,
		Column: &Column{
			Name: name,
		},
	}
}

func NewAlias(name string, expr ExprNode) Expr {
	return Expr{
		ExprType: ExprTypeAlias,
		Alias: &Alias{
			Expr: expr,
			Name: name,
		},
	}
}

func NewLiteral(value prism.Value) Expr {
	return Expr{
		ExprType: ExprTypeLiteral,
		Literal: &Literal{
			Value: value,
		},
	}
}

func NewFunctionCall(name string, arguments []ExprNode, descriptor FunctionDescriptor) Expr {
	return Expr{
		ExprType: ExprTypeFunctionCall,
		FunctionCall: &FunctionCall{
			Name:               name,
			Arguments:          arguments,
			FunctionDescriptor: descriptor,
		},
	}
}

// OutputName resolves the column name an expression produces in a schema.
func (a *ExprArena) OutputName(node ExprNode) string {
	expr := a.Get(node)
	switch expr.ExprType {
	case ExprTypeColumn:
		return expr.Column.Name
	case ExprTypeAlias:
		return expr.Alias.Name
	case ExprTypeLiteral:
		return "literal"
	case ExprTypeFunctionCall:
		for _, arg := range expr.FunctionCall.Arguments {
			if a.Get(arg).ExprType != ExprTypeLiteral {
				return a.OutputName(arg)
			}
		}
		return expr.FunctionCall.Name
	}
	panic(fmt.Sprintf("unexhaustive expression type match: %d", expr.ExprType))
}

// ColumnName returns the referenced column name if the expression is a bare
// column reference.
func (a *ExprArena) ColumnName(node ExprNode) (string, bool) {
	expr := a.Get(node)
	if expr.ExprType != ExprTypeColumn {
		return "", false
	}
	return expr.Column.Name, true
}

// CollectColumns returns the input columns an expression depends on, in
// order of first appearance, without duplicates.
func (a *ExprArena) CollectColumns(node ExprNode) []string {
	var out []string
	seen := make(map[string]struct{})
	a.collectColumns(node, seen, &out)
	return out
}

func (a *ExprArena) collectColumns(node ExprNode, seen map[string]struct{}, out *[]string) {
	expr := a.Get(node)
	switch expr.ExprType {
	case ExprTypeColumn:
		if _, ok := seen[expr.Column.Name]; !ok {
			seen[expr.Column.Name] = struct{}{}
			*out = append(*out, expr.Column.Name)
		}
	case ExprTypeAlias:
		a.collectColumns(expr.Alias.Expr, seen, out)
	case ExprTypeLiteral:
	case ExprTypeFunctionCall:
		for _, arg := range expr.FunctionCall.Arguments {
			a.collectColumns(arg, seen, out)
		}
	}
}

// TypeOf computes the output type of an expression against the schema of the
// node it will be evaluated on.
func (a *ExprArena) TypeOf(node ExprNode, schema Schema) (prism.Type, error) {
	expr := a.Get(node)
	switch expr.ExprType {
	case ExprTypeColumn:
		field, ok := schema.Field(expr.Column.Name)
		if !ok {
			return prism.Type{}, fmt.Errorf("column '%s': %w", expr.Column.Name, ErrSchemaMismatch)
		}
		return field.Type, nil
	case ExprTypeAlias:
		return a.TypeOf(expr.Alias.Expr, schema)
	case ExprTypeLiteral:
		return expr.Literal.Value.Type, nil
	case ExprTypeFunctionCall:
		argTypes := make([]prism.Type, len(expr.FunctionCall.Arguments))
		for i, arg := range expr.FunctionCall.Arguments {
			argType, err := a.TypeOf(arg, schema)
			if err != nil {
				return prism.Type{}, fmt.Errorf("couldn't compute type of argument %d of '%s': %w", i, expr.FunctionCall.Name, err)
			}
			argTypes[i] = argType
		}
		outType, ok := expr.FunctionCall.FunctionDescriptor.TypeFn(argTypes)
		if !ok {
			return prism.Type{}, fmt.Errorf("function '%s' doesn't accept argument types %v", expr.FunctionCall.Name, argTypes)
		}
		return outType, nil
	}
	panic(fmt.Sprintf("unexhaustive expression type match: %d", expr.ExprType))
}

// DescribeExpr renders an expression for plan explanations.
func (a *ExprArena) DescribeExpr(node ExprNode) string {
	expr := a.Get(node)
	switch expr.ExprType {
	case ExprTypeColumn:
		return expr.Column.Name
	case ExprTypeAlias:
		return fmt.Sprintf("%s AS %s", a.DescribeExpr(expr.Alias.Expr), expr.Alias.Name)
	case ExprTypeLiteral:
		return expr.Literal.Value.String()
	case ExprTypeFunctionCall:
		args := ""
		for i, arg := range expr.FunctionCall.Arguments {
			if i > 0 {
				args += ", "
			}
			args += a.DescribeExpr(arg)
		}
		return fmt.Sprintf("%s(%s)", expr.FunctionCall.Name, args)
	}
	panic(fmt.Sprintf("unexhaustive expression type match: %d", expr.ExprType))
}
