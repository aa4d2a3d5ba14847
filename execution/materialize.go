package execution

import (
	"fmt"

	"github.com/prismql/prism/plan"
)

// Materialize turns a plan subtree into an executable node tree. Column
// references are resolved into indices here, against the already-optimized
// schemas, so execution never looks at column names again.
func Materialize(node plan.Node, plans *plan.Arena, exprs *plan.ExprArena, env Environment) (Node, error) {
	ir := plans.Get(node)
	switch ir.IRType {
	case plan.IRTypeScan:
		table, ok := env.Tables[ir.Scan.Table]
		if !ok {
			return nil, fmt.Errorf("unknown table: '%s'", ir.Scan.Table)
		}
		if !table.Schema.Equals(ir.Scan.TableSchema) {
			return nil, fmt.Errorf("table '%s' schema %s doesn't match plan schema %s", ir.Scan.Table, table.Schema, ir.Scan.TableSchema)
		}
		projection := ir.Scan.Projection
		if projection == nil {
			projection = ir.Scan.TableSchema.Names()
		}
		columns := make([]int, len(projection))
		for i, name := range projection {
			index := table.Schema.FieldIndex(name)
			if index == -1 {
				return nil, fmt.Errorf("projected column '%s' not in table '%s': %w", name, ir.Scan.Table, plan.ErrSchemaMismatch)
			}
			columns[i] = index
		}
		return NewInMemoryRecords(table.Records, columns), nil

	case plan.IRTypeSimpleProjection:
		source, err := Materialize(ir.SimpleProjection.Source, plans, exprs, env)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize projection source: %w", err)
		}
		sourceSchema, err := plan.ComputeSchema(ir.SimpleProjection.Source, plans, exprs)
		if err != nil {
			return nil, err
		}
		expressions := make([]Expression, len(ir.SimpleProjection.Expressions))
		for i, expr := range ir.SimpleProjection.Expressions {
			materialized, err := MaterializeExpr(expr, exprs, sourceSchema)
			if err != nil {
				return nil, fmt.Errorf("couldn't materialize projection expression %d: %w", i, err)
			}
			expressions[i] = materialized
		}
		return NewMap(source, expressions), nil

	case plan.IRTypeFilter:
		source, err := Materialize(ir.Filter.Source, plans, exprs, env)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize filter source: %w", err)
		}
		sourceSchema, err := plan.ComputeSchema(ir.Filter.Source, plans, exprs)
		if err != nil {
			return nil, err
		}
		predicate, err := MaterializeExpr(ir.Filter.Predicate, exprs, sourceSchema)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize filter predicate: %w", err)
		}
		return NewFilter(source, predicate), nil

	case plan.IRTypeUnpivot:
		source, err := Materialize(ir.Unpivot.Source, plans, exprs, env)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize unpivot source: %w", err)
		}
		sourceSchema, err := plan.ComputeSchema(ir.Unpivot.Source, plans, exprs)
		if err != nil {
			return nil, err
		}
		indexColumns := make([]int, len(ir.Unpivot.Args.Index))
		for i, name := range ir.Unpivot.Args.Index {
			index := sourceSchema.FieldIndex(name)
			if index == -1 {
				return nil, fmt.Errorf("unpivot index column '%s' not in source schema %s: %w", name, sourceSchema, plan.ErrSchemaMismatch)
			}
			indexColumns[i] = index
		}
		onNames := ir.Unpivot.Args.On
		if len(onNames) == 0 {
			// Melt every non-index column of the runtime input schema.
			indexSet := make(map[string]struct{}, len(ir.Unpivot.Args.Index))
			for _, name := range ir.Unpivot.Args.Index {
				indexSet[name] = struct{}{}
			}
			for _, field := range sourceSchema.Fields {
				if _, ok := indexSet[field.Name]; !ok {
					onNames = append(onNames, field.Name)
				}
			}
		}
		onColumns := make([]int, len(onNames))
		for i, name := range onNames {
			index := sourceSchema.FieldIndex(name)
			if index == -1 {
				return nil, fmt.Errorf("unpivot on column '%s' not in source schema %s: %w", name, sourceSchema, plan.ErrSchemaMismatch)
			}
			onColumns[i] = index
		}
		return NewUnpivot(source, indexColumns, onColumns, onNames), nil

	case plan.IRTypeDistinct:
		source, err := Materialize(ir.Distinct.Source, plans, exprs, env)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize distinct source: %w", err)
		}
		return NewDistinct(source), nil

	case plan.IRTypeSlice:
		source, err := Materialize(ir.Slice.Source, plans, exprs, env)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize slice source: %w", err)
		}
		return NewSlice(source, ir.Slice.Offset, ir.Slice.Limit), nil

	case plan.IRTypeJoin:
		left, err := Materialize(ir.Join.Left, plans, exprs, env)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize left join source: %w", err)
		}
		right, err := Materialize(ir.Join.Right, plans, exprs, env)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize right join source: %w", err)
		}
		leftSchema, err := plan.ComputeSchema(ir.Join.Left, plans, exprs)
		if err != nil {
			return nil, err
		}
		rightSchema, err := plan.ComputeSchema(ir.Join.Right, plans, exprs)
		if err != nil {
			return nil, err
		}
		leftKey := make([]Expression, len(ir.Join.LeftKey))
		for i, expr := range ir.Join.LeftKey {
			materialized, err := MaterializeExpr(expr, exprs, leftSchema)
			if err != nil {
				return nil, fmt.Errorf("couldn't materialize left key expression %d: %w", i, err)
			}
			leftKey[i] = materialized
		}
		rightKey := make([]Expression, len(ir.Join.RightKey))
		for i, expr := range ir.Join.RightKey {
			materialized, err := MaterializeExpr(expr, exprs, rightSchema)
			if err != nil {
				return nil, fmt.Errorf("couldn't materialize right key expression %d: %w", i, err)
			}
			rightKey[i] = materialized
		}
		return NewJoin(left, right, leftKey, rightKey), nil

	case plan.IRTypeGroupBy:
		source, err := Materialize(ir.GroupBy.Source, plans, exprs, env)
		if err != nil {
			return nil, fmt.Errorf("couldn't materialize group by source: %w", err)
		}
		sourceSchema, err := plan.ComputeSchema(ir.GroupBy.Source, plans, exprs)
		if err != nil {
			return nil, err
		}
		keyColumns := make([]int, len(ir.GroupBy.Key))
		for i, name := range ir.GroupBy.Key {
			index := sourceSchema.FieldIndex(name)
			if index == -1 {
				return nil, fmt.Errorf("group by key column '%s' not in source schema %s: %w", name, sourceSchema, plan.ErrSchemaMismatch)
			}
			keyColumns[i] = index
		}
		aggregateColumns := make([]int, len(ir.GroupBy.Aggregates))
		aggregatePrototypes := make([]func() Aggregate, len(ir.GroupBy.Aggregates))
		for i, aggregate := range ir.GroupBy.Aggregates {
			index := sourceSchema.FieldIndex(aggregate.Column)
			if index == -1 {
				return nil, fmt.Errorf("aggregate column '%s' not in source schema %s: %w", aggregate.Column, sourceSchema, plan.ErrSchemaMismatch)
			}
			aggregateColumns[i] = index
			prototype, ok := NewAggregatePrototype(aggregate.Name)
			if !ok {
				return nil, fmt.Errorf("unknown aggregate: '%s'", aggregate.Name)
			}
			aggregatePrototypes[i] = prototype
		}
		return NewGroupBy(source, keyColumns, aggregateColumns, aggregatePrototypes), nil
	}
	panic(fmt.Sprintf("unexhaustive node type match: %d", ir.IRType))
}
