package plan

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/prismql/prism/prism"
)

// ErrSchemaMismatch means a column required by a node is absent from its
// child's computed schema. It aborts the current pass; it is never retried.
var ErrSchemaMismatch = errors.New("schema mismatch")

type Schema struct {
	Fields []SchemaField
}

type SchemaField struct {
	Name string
	Type prism.Type
}

func NewSchema(fields []SchemaField) Schema {
	return Schema{
		Fields: fields,
	}
}

func (schema Schema) Field(name string) (SchemaField, bool) {
	for i := range schema.Fields {
		if schema.Fields[i].Name == name {
			return schema.Fields[i], true
		}
	}
	return SchemaField{}, false
}

func (schema Schema) FieldIndex(name string) int {
	for i := range schema.Fields {
		if schema.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

func (schema Schema) Names() []string {
	names := make([]string, len(schema.Fields))
	for i := range schema.Fields {
		names[i] = schema.Fields[i].Name
	}
	return names
}

func (schema Schema) Equals(other Schema) bool {
	if len(schema.Fields) != len(other.Fields) {
		return false
	}
	for i := range schema.Fields {
		if schema.Fields[i].Name != other.Fields[i].Name {
			return false
		}
		if !schema.Fields[i].Type.Equals(other.Fields[i].Type) {
			return false
		}
	}
	return true
}

func (schema Schema) String() string {
	out := ""
	for i, field := range schema.Fields {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %s", field.Name, field.Type)
	}
	return "(" + out + ")"
}

// ComputeSchema derives the output schema of a node from its kind, its
// children's schemas and its parameters. Schemas are never stored on nodes;
// they are always recomputed so that rewritten children are reflected.
func ComputeSchema(node Node, plans *Arena, exprs *ExprArena) (Schema, error) {
	return computeSchemaIR(plans.Get(node), plans, exprs)
}

// ComputeSchemaIR computes the schema of a node value that hasn't been added
// to the arena yet. Its children must already live in the arena.
func ComputeSchemaIR(ir IR, plans *Arena, exprs *ExprArena) (Schema, error) {
	return computeSchemaIR(ir, plans, exprs)
}

func computeSchemaIR(ir IR, plans *Arena, exprs *ExprArena) (Schema, error) {
	switch ir.IRType {
	case IRTypeScan:
		if ir.Scan.Projection == nil {
			return ir.Scan.TableSchema, nil
		}
		fields := make([]SchemaField, len(ir.Scan.Projection))
		for i, name := range ir.Scan.Projection {
			field, ok := ir.Scan.TableSchema.Field(name)
			if !ok {
				return Schema{}, errors.Wrapf(ErrSchemaMismatch, "projected column '%s' not in table '%s'", name, ir.Scan.Table)
			}
			fields[i] = field
		}
		return NewSchema(fields), nil

	case IRTypeSimpleProjection:
		source, err := ComputeSchema(ir.SimpleProjection.Source, plans, exprs)
		if err != nil {
			return Schema{}, err
		}
		fields := make([]SchemaField, len(ir.SimpleProjection.Expressions))
		for i, expr := range ir.SimpleProjection.Expressions {
			outType, err := exprs.TypeOf(expr, source)
			if err != nil {
				return Schema{}, errors.Wrapf(err, "couldn't compute type of projection expression %d", i)
			}
			fields[i] = SchemaField{
				Name: exprs.OutputName(expr),
				Type: outType,
			}
		}
		return NewSchema(fields), nil

	case IRTypeFilter:
		source, err := ComputeSchema(ir.Filter.Source, plans, exprs)
		if err != nil {
			return Schema{}, err
		}
		for _, name := range exprs.CollectColumns(ir.Filter.Predicate) {
			if _, ok := source.Field(name); !ok {
				return Schema{}, errors.Wrapf(ErrSchemaMismatch, "filter predicate column '%s' not in source schema %s", name, source)
			}
		}
		return source, nil

	case IRTypeUnpivot:
		source, err := ComputeSchema(ir.Unpivot.Source, plans, exprs)
		if err != nil {
			return Schema{}, err
		}
		return unpivotSchema(ir.Unpivot.Args, source)

	case IRTypeDistinct:
		return ComputeSchema(ir.Distinct.Source, plans, exprs)

	case IRTypeSlice:
		return ComputeSchema(ir.Slice.Source, plans, exprs)

	case IRTypeJoin:
		left, err := ComputeSchema(ir.Join.Left, plans, exprs)
		if err != nil {
			return Schema{}, err
		}
		right, err := ComputeSchema(ir.Join.Right, plans, exprs)
		if err != nil {
			return Schema{}, err
		}
		fields := make([]SchemaField, 0, len(left.Fields)+len(right.Fields))
		fields = append(fields, left.Fields...)
		fields = append(fields, right.Fields...)
		return NewSchema(fields), nil

	case IRTypeGroupBy:
		source, err := ComputeSchema(ir.GroupBy.Source, plans, exprs)
		if err != nil {
			return Schema{}, err
		}
		fields := make([]SchemaField, 0, len(ir.GroupBy.Key)+len(ir.GroupBy.Aggregates))
		for _, name := range ir.GroupBy.Key {
			field, ok := source.Field(name)
			if !ok {
				return Schema{}, errors.Wrapf(ErrSchemaMismatch, "group by key column '%s' not in source schema %s", name, source)
			}
			fields = append(fields, field)
		}
		for _, aggregate := range ir.GroupBy.Aggregates {
			if _, ok := source.Field(aggregate.Column); !ok {
				return Schema{}, errors.Wrapf(ErrSchemaMismatch, "aggregate column '%s' not in source schema %s", aggregate.Column, source)
			}
			fields = append(fields, SchemaField{
				Name: aggregate.OutputName,
				Type: aggregate.OutputType,
			})
		}
		return NewSchema(fields), nil
	}
	panic(fmt.Sprintf("unexhaustive node type match: %d", ir.IRType))
}

func unpivotSchema(args UnpivotArgs, source Schema) (Schema, error) {
	fields := make([]SchemaField, 0, len(args.Index)+2)
	indexSet := make(map[string]struct{}, len(args.Index))
	for _, name := range args.Index {
		field, ok := source.Field(name)
		if !ok {
			return Schema{}, errors.Wrapf(ErrSchemaMismatch, "unpivot index column '%s' not in source schema %s", name, source)
		}
		fields = append(fields, field)
		indexSet[name] = struct{}{}
	}

	on := args.On
	if len(on) == 0 {
		// Melt every non-index column of the input.
		for _, field := range source.Fields {
			if _, ok := indexSet[field.Name]; !ok {
				on = append(on, field.Name)
			}
		}
	}

	valueType := prism.Null
	for i, name := range on {
		field, ok := source.Field(name)
		if !ok {
			return Schema{}, errors.Wrapf(ErrSchemaMismatch, "unpivot on column '%s' not in source schema %s", name, source)
		}
		if i == 0 {
			valueType = field.Type
		} else {
			valueType = prism.TypeSum(valueType, field.Type)
		}
	}

	fields = append(fields,
		SchemaField{Name: args.VariableColumn(), Type: prism.String},
		SchemaField{Name: args.ValueColumn(), Type: valueType},
	)
	return NewSchema(fields), nil
}
