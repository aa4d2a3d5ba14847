package planfile

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/prismql/prism/execution"
	"github.com/prismql/prism/plan"
	"github.com/prismql/prism/prism"
)

// Plan is a fully built logical plan together with the tables it reads.
type Plan struct {
	Root  plan.Node
	Plans *plan.Arena
	Exprs *plan.ExprArena
	Env   execution.Environment
}

type fileSpec struct {
	Tables map[string]tableSpec `yaml:"tables"`
	Plan   nodeSpec             `yaml:"plan"`
}

type tableSpec struct {
	Columns []columnSpec    `yaml:"columns"`
	Rows    [][]interface{} `yaml:"rows"`
}

type columnSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type nodeSpec struct {
	Scan     string        `yaml:"scan"`
	Project  *projectSpec  `yaml:"project"`
	Filter   *filterSpec   `yaml:"filter"`
	Unpivot  *unpivotSpec  `yaml:"unpivot"`
	Distinct *distinctSpec `yaml:"distinct"`
	Slice    *sliceSpec    `yaml:"slice"`
	Join     *joinSpec     `yaml:"join"`
	GroupBy  *groupBySpec  `yaml:"groupBy"`
}

type projectSpec struct {
	Expressions []exprSpec `yaml:"expressions"`
	Input       *nodeSpec  `yaml:"input"`
}

type filterSpec struct {
	Predicate exprSpec  `yaml:"predicate"`
	Input     *nodeSpec `yaml:"input"`
}

type unpivotSpec struct {
	Index        []string  `yaml:"index"`
	On           []string  `yaml:"on"`
	VariableName string    `yaml:"variableName"`
	ValueName    string    `yaml:"valueName"`
	Input        *nodeSpec `yaml:"input"`
}

type distinctSpec struct {
	Input *nodeSpec `yaml:"input"`
}

type sliceSpec struct {
	Offset int       `yaml:"offset"`
	Limit  *int      `yaml:"limit"`
	Input  *nodeSpec `yaml:"input"`
}

type joinSpec struct {
	Left     *nodeSpec  `yaml:"left"`
	Right    *nodeSpec  `yaml:"right"`
	LeftKey  []exprSpec `yaml:"leftKey"`
	RightKey []exprSpec `yaml:"rightKey"`
}

type groupBySpec struct {
	Key        []string        `yaml:"key"`
	Aggregates []aggregateSpec `yaml:"aggregates"`
	Input      *nodeSpec       `yaml:"input"`
}

type aggregateSpec struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
	As     string `yaml:"as"`
}

type exprSpec struct {
	Column   string        `yaml:"column"`
	Literal  interface{}   `yaml:"literal"`
	Function *functionSpec `yaml:"function"`
	As       string        `yaml:"as"`
}

type functionSpec struct {
	Name string     `yaml:"name"`
	Args []exprSpec `yaml:"args"`
}

type builder struct {
	plans     *plan.Arena
	exprs     *plan.ExprArena
	functions map[string]plan.FunctionDescriptor
	tables    map[string]*execution.Table
}

// Load reads a plan description and builds it into fresh arenas.
func Load(path string, functions map[string]plan.FunctionDescriptor) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read plan file")
	}
	return Parse(data, functions)
}

// Parse builds a plan from the yaml plan description.
func Parse(data []byte, functions map[string]plan.FunctionDescriptor) (*Plan, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml plan description")
	}

	b := &builder{
		plans:     plan.NewArena(),
		exprs:     plan.NewExprArena(),
		functions: functions,
		tables:    make(map[string]*execution.Table),
	}

	for name, table := range spec.Tables {
		built, err := b.buildTable(table)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't build table '%s'", name)
		}
		b.tables[name] = built
	}

	root, err := b.buildNode(&spec.Plan)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't build plan")
	}

	// Typecheck the whole tree before handing it out.
	if _, err := plan.ComputeSchema(root, b.plans, b.exprs); err != nil {
		return nil, errors.Wrap(err, "couldn't compute plan schema")
	}

	return &Plan{
		Root:  root,
		Plans: b.plans,
		Exprs: b.exprs,
		Env: execution.Environment{
			Tables: b.tables,
		},
	}, nil
}

func parseType(name string) (prism.Type, error) {
	switch name {
	case "Int":
		return prism.Int, nil
	case "Float":
		return prism.Float, nil
	case "Boolean":
		return prism.Boolean, nil
	case "String":
		return prism.String, nil
	}
	return prism.Type{}, errors.Errorf("unknown column type: '%s'", name)
}

func parseValue(untyped interface{}, t prism.Type) (prism.Value, error) {
	if untyped == nil {
		return prism.NewNull(), nil
	}
	switch t.TypeID {
	case prism.TypeIDInt:
		if value, ok := untyped.(int); ok {
			return prism.NewInt(value), nil
		}
	case prism.TypeIDFloat:
		switch value := untyped.(type) {
		case float64:
			return prism.NewFloat(value), nil
		case int:
			return prism.NewFloat(float64(value)), nil
		}
	case prism.TypeIDBoolean:
		if value, ok := untyped.(bool); ok {
			return prism.NewBoolean(value), nil
		}
	case prism.TypeIDString:
		if value, ok := untyped.(string); ok {
			return prism.NewString(value), nil
		}
	}
	return prism.Value{}, errors.Errorf("value %v doesn't fit column type %s", untyped, t)
}

func (b *builder) buildTable(spec tableSpec) (*execution.Table, error) {
	fields := make([]plan.SchemaField, len(spec.Columns))
	for i, column := range spec.Columns {
		columnType, err := parseType(column.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = plan.SchemaField{
			Name: column.Name,
			Type: columnType,
		}
	}
	schema := plan.NewSchema(fields)

	records := make([]execution.Record, len(spec.Rows))
	for i, row := range spec.Rows {
		if len(row) != len(fields) {
			return nil, errors.Errorf("row %d has %d values, want %d", i, len(row), len(fields))
		}
		values := make([]prism.Value, len(row))
		for j := range row {
			value, err := parseValue(row[j], fields[j].Type)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column '%s'", i, fields[j].Name)
			}
			values[j] = value
		}
		records[i] = execution.NewRecord(values)
	}

	return &execution.Table{
		Schema:  schema,
		Records: records,
	}, nil
}

func (b *builder) buildNode(spec *nodeSpec) (plan.Node, error) {
	switch {
	case spec.Scan != "":
		table, ok := b.tables[spec.Scan]
		if !ok {
			return 0, errors.Errorf("unknown table: '%s'", spec.Scan)
		}
		return b.plans.Add(plan.IR{
			IRType: plan.IRTypeScan,
			Scan: &plan.Scan{
				Table:       spec.Scan,
				TableSchema: table.Schema,
			},
		}), nil

	case spec.Project != nil:
		source, err := b.buildNode(spec.Project.Input)
		if err != nil {
			return 0, err
		}
		expressions := make([]plan.ExprNode, len(spec.Project.Expressions))
		for i := range spec.Project.Expressions {
			expr, err := b.buildExpr(&spec.Project.Expressions[i])
			if err != nil {
				return 0, errors.Wrapf(err, "couldn't build projection expression %d", i)
			}
			expressions[i] = expr
		}
		return b.plans.Add(plan.IR{
			IRType: plan.IRTypeSimpleProjection,
			SimpleProjection: &plan.SimpleProjection{
				Source:      source,
				Expressions: expressions,
			},
		}), nil

	case spec.Filter != nil:
		source, err := b.buildNode(spec.Filter.Input)
		if err != nil {
			return 0, err
		}
		predicate, err := b.buildExpr(&spec.Filter.Predicate)
		if err != nil {
			return 0, errors.Wrap(err, "couldn't build filter predicate")
		}
		return b.plans.Add(plan.IR{
			IRType: plan.IRTypeFilter,
			Filter: &plan.Filter{
				Source:    source,
				Predicate: predicate,
			},
		}), nil

	case spec.Unpivot != nil:
		source, err := b.buildNode(spec.Unpivot.Input)
		if err != nil {
			return 0, err
		}
		return b.plans.Add(plan.IR{
			IRType: plan.IRTypeUnpivot,
			Unpivot: &plan.Unpivot{
				Source: source,
				Args: plan.UnpivotArgs{
					Index:        spec.Unpivot.Index,
					On:           spec.Unpivot.On,
					VariableName: spec.Unpivot.VariableName,
					ValueName:    spec.Unpivot.ValueName,
				},
			},
		}), nil

	case spec.Distinct != nil:
		source, err := b.buildNode(spec.Distinct.Input)
		if err != nil {
			return 0, err
		}
		return b.plans.Add(plan.IR{
			IRType: plan.IRTypeDistinct,
			Distinct: &plan.Distinct{
				Source: source,
			},
		}), nil

	case spec.Slice != nil:
		source, err := b.buildNode(spec.Slice.Input)
		if err != nil {
			return 0, err
		}
		limit := -1
		if spec.Slice.Limit != nil {
			limit = *spec.Slice.Limit
		}
		return b.plans.Add(plan.IR{
			IRType: plan.IRTypeSlice,
			Slice: &plan.Slice{
				Source: source,
				Offset: spec.Slice.Offset,
				Limit:  limit,
			},
		}), nil

	case spec.Join != nil:
		left, err := b.buildNode(spec.Join.Left)
		if err != nil {
			return 0, err
		}
		right, err := b.buildNode(spec.Join.Right)
		if err != nil {
			return 0, err
		}
		leftKey := make([]plan.ExprNode, len(spec.Join.LeftKey))
		for i := range spec.Join.LeftKey {
			expr, err := b.buildExpr(&spec.Join.LeftKey[i])
			if err != nil {
				return 0, errors.Wrapf(err, "couldn't build left key expression %d", i)
			}
			leftKey[i] = expr
		}
		rightKey := make([]plan.ExprNode, len(spec.Join.RightKey))
		for i := range spec.Join.RightKey {
			expr, err := b.buildExpr(&spec.Join.RightKey[i])
			if err != nil {
				return 0, errors.Wrapf(err, "couldn't build right key expression %d", i)
			}
			rightKey[i] = expr
		}
		return b.plans.Add(plan.IR{
			IRType: plan.IRTypeJoin,
			Join: &plan.Join{
				Left:     left,
				Right:    right,
				LeftKey:  leftKey,
				RightKey: rightKey,
			},
		}), nil

	case spec.GroupBy != nil:
		source, err := b.buildNode(spec.GroupBy.Input)
		if err != nil {
			return 0, err
		}
		sourceSchema, err := plan.ComputeSchema(source, b.plans, b.exprs)
		if err != nil {
			return 0, err
		}
		aggregates := make([]plan.Aggregate, len(spec.GroupBy.Aggregates))
		for i, aggregate := range spec.GroupBy.Aggregates {
			field, ok := sourceSchema.Field(aggregate.Column)
			if !ok {
				return 0, errors.Errorf("aggregate column '%s' not in source schema %s", aggregate.Column, sourceSchema)
			}
			outputType, err := execution.AggregateOutputType(aggregate.Name, field.Type)
			if err != nil {
				return 0, err
			}
			outputName := aggregate.As
			if outputName == "" {
				outputName = aggregate.Column + "_" + aggregate.Name
			}
			aggregates[i] = plan.Aggregate{
				Name:       aggregate.Name,
				Column:     aggregate.Column,
				OutputName: outputName,
				OutputType: outputType,
			}
		}
		return b.plans.Add(plan.IR{
			IRType: plan.IRTypeGroupBy,
			GroupBy: &plan.GroupBy{
				Source:     source,
				Key:        spec.GroupBy.Key,
				Aggregates: aggregates,
			},
		}), nil
	}
	return 0, errors.New("plan node must have exactly one of: scan, project, filter, unpivot, distinct, slice, join, groupBy")
}

func (b *builder) buildExpr(spec *exprSpec) (plan.ExprNode, error) {
	var out plan.ExprNode
	switch {
	case spec.Column != "":
		out = b.exprs.Add(plan.NewColumn(spec.Column))

	case spec.Function != nil:
		descriptor, ok := b.functions[spec.Function.Name]
		if !ok {
			return 0, errors.Errorf("unknown function: '%s'", spec.Function.Name)
		}
		arguments := make([]plan.ExprNode, len(spec.Function.Args))
		for i := range spec.Function.Args {
			argument, err := b.buildExpr(&spec.Function.Args[i])
			if err != nil {
				return 0, errors.Wrapf(err, "couldn't build argument %d of '%s'", i, spec.Function.Name)
			}
			arguments[i] = argument
		}
		out = b.exprs.Add(plan.NewFunctionCall(spec.Function.Name, arguments, descriptor))

	case spec.Literal != nil:
		value, err := parseLiteral(spec.Literal)
		if err != nil {
			return 0, err
		}
		out = b.exprs.Add(plan.NewLiteral(value))

	default:
		return 0, errors.New("expression must have exactly one of: column, function, literal")
	}

	if spec.As != "" {
		out = b.exprs.Add(plan.NewAlias(spec.As, out))
	}
	return out, nil
}

func parseLiteral(untyped interface{}) (prism.Value, error) {
	switch value := untyped.(type) {
	case int:
		return prism.NewInt(value), nil
	case float64:
		return prism.NewFloat(value), nil
	case bool:
		return prism.NewBoolean(value), nil
	case string:
		return prism.NewString(value), nil
	}
	return prism.Value{}, errors.Errorf("unsupported literal: %v", untyped)
}
