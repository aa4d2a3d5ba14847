package execution

import (
	"fmt"

	"github.com/prismql/prism/plan"
	"github.com/prismql/prism/prism"
)

type Expression interface {
	Evaluate(record Record) (prism.Value, error)
}

type variable struct {
	index int
}

func NewVariable(index int) Expression {
	return &variable{
		index: index,
	}
}

func (v *variable) Evaluate(record Record) (prism.Value, error) {
	return record.Values[v.index], nil
}

type constant struct {
	value prism.Value
}

func NewConstant(value prism.Value) Expression {
	return &constant{
		value: value,
	}
}

func (c *constant) Evaluate(record Record) (prism.Value, error) {
	return c.value, nil
}

type functionCall struct {
	name      string
	strict    bool
	function  func([]prism.Value) (prism.Value, error)
	arguments []Expression
}

func NewFunctionCall(name string, descriptor plan.FunctionDescriptor, arguments []Expression) Expression {
	return &functionCall{
		name:      name,
		strict:    descriptor.Strict,
		function:  descriptor.Function,
		arguments: arguments,
	}
}

func (f *functionCall) Evaluate(record Record) (prism.Value, error) {
	values := make([]prism.Value, len(f.arguments))
	for i, argument := range f.arguments {
		value, err := argument.Evaluate(record)
		if err != nil {
			return prism.Value{}, fmt.Errorf("couldn't evaluate argument %d of '%s': %w", i, f.name, err)
		}
		if f.strict && value.Type.TypeID == prism.TypeIDNull {
			return prism.NewNull(), nil
		}
		values[i] = value
	}
	out, err := f.function(values)
	if err != nil {
		return prism.Value{}, fmt.Errorf("couldn't evaluate '%s': %w", f.name, err)
	}
	return out, nil
}

// MaterializeExpr turns an expression IR entry into an evaluable expression,
// resolving column references into indices of the source schema.
func MaterializeExpr(node plan.ExprNode, exprs *plan.ExprArena, sourceSchema plan.Schema) (Expression, error) {
	expr := exprs.Get(node)
	switch expr.ExprType {
	case plan.ExprTypeColumn:
		index := sourceSchema.FieldIndex(expr.Column.Name)
		if index == -1 {
			return nil, fmt.Errorf("column '%s' not in source schema %s: %w", expr.Column.Name, sourceSchema, plan.ErrSchemaMismatch)
		}
		return NewVariable(index), nil

	case plan.ExprTypeAlias:
		return MaterializeExpr(expr.Alias.Expr, exprs, sourceSchema)

	case plan.ExprTypeLiteral:
		return NewConstant(expr.Literal.Value), nil

	case plan.ExprTypeFunctionCall:
		arguments := make([]Expression, len(expr.FunctionCall.Arguments))
		for i, argument := range expr.FunctionCall.Arguments {
			materialized, err := MaterializeExpr(argument, exprs, sourceSchema)
			if err != nil {
				return nil, fmt.Errorf("couldn't materialize argument %d of '%s': %w", i, expr.FunctionCall.Name, err)
			}
			arguments[i] = materialized
		}
		return NewFunctionCall(expr.FunctionCall.Name, expr.FunctionCall.FunctionDescriptor, arguments), nil
	}
	panic(fmt.Sprintf("unexhaustive expression type match: %d", expr.ExprType))
}
