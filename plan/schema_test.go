package plan

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/prismql/prism/prism"
)

func inventorySchema() Schema {
	return NewSchema([]SchemaField{
		{Name: "sku", Type: prism.String},
		{Name: "count", Type: prism.Int},
		{Name: "weight", Type: prism.Float},
	})
}

func addInventoryScan(plans *Arena, projection []string) Node {
	return plans.Add(IR{
		IRType: IRTypeScan,
		Scan: &Scan{
			Table:       "inventory",
			TableSchema: inventorySchema(),
			Projection:  projection,
		},
	})
}

func TestComputeSchema_Scan(t *testing.T) {
	tests := []struct {
		name       string
		projection []string
		want       Schema
		wantErr    bool
	}{
		{
			name:       "no projection reads the whole table",
			projection: nil,
			want:       inventorySchema(),
		},
		{
			name:       "projection narrows and reorders",
			projection: []string{"weight", "sku"},
			want: NewSchema([]SchemaField{
				{Name: "weight", Type: prism.Float},
				{Name: "sku", Type: prism.String},
			}),
		},
		{
			name:       "unknown projected column",
			projection: []string{"color"},
			wantErr:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := NewArena()
			exprs := NewExprArena()
			scan := addInventoryScan(plans, tt.projection)

			got, err := ComputeSchema(scan, plans, exprs)
			if tt.wantErr {
				if !errors.Is(err, ErrSchemaMismatch) {
					t.Fatalf("err = %v, want ErrSchemaMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equals(tt.want) {
				t.Errorf("schema = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeSchema_Unpivot(t *testing.T) {
	tests := []struct {
		name string
		args UnpivotArgs
		want Schema
	}{
		{
			name: "single on column keeps its type",
			args: UnpivotArgs{
				Index: []string{"sku"},
				On:    []string{"weight"},
			},
			want: NewSchema([]SchemaField{
				{Name: "sku", Type: prism.String},
				{Name: "variable", Type: prism.String},
				{Name: "value", Type: prism.Float},
			}),
		},
		{
			name: "mixed on column types sum to a union",
			args: UnpivotArgs{
				Index: []string{"sku"},
				On:    []string{"count", "weight"},
			},
			want: NewSchema([]SchemaField{
				{Name: "sku", Type: prism.String},
				{Name: "variable", Type: prism.String},
				{Name: "value", Type: prism.TypeSum(prism.Int, prism.Float)},
			}),
		},
		{
			name: "empty on melts all non-index columns",
			args: UnpivotArgs{
				Index: []string{"sku"},
			},
			want: NewSchema([]SchemaField{
				{Name: "sku", Type: prism.String},
				{Name: "variable", Type: prism.String},
				{Name: "value", Type: prism.TypeSum(prism.Int, prism.Float)},
			}),
		},
		{
			name: "custom variable and value names",
			args: UnpivotArgs{
				Index:        []string{"sku"},
				On:           []string{"weight"},
				VariableName: "measure",
				ValueName:    "amount",
			},
			want: NewSchema([]SchemaField{
				{Name: "sku", Type: prism.String},
				{Name: "measure", Type: prism.String},
				{Name: "amount", Type: prism.Float},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := NewArena()
			exprs := NewExprArena()
			scan := addInventoryScan(plans, nil)
			unpivot := plans.Add(IR{
				IRType: IRTypeUnpivot,
				Unpivot: &Unpivot{
					Source: scan,
					Args:   tt.args,
				},
			})

			got, err := ComputeSchema(unpivot, plans, exprs)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equals(tt.want) {
				t.Errorf("schema = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeSchema_UnpivotMissingColumn(t *testing.T) {
	plans := NewArena()
	exprs := NewExprArena()
	scan := addInventoryScan(plans, []string{"sku"})
	unpivot := plans.Add(IR{
		IRType: IRTypeUnpivot,
		Unpivot: &Unpivot{
			Source: scan,
			Args: UnpivotArgs{
				Index: []string{"sku"},
				On:    []string{"weight"},
			},
		},
	})

	if _, err := ComputeSchema(unpivot, plans, exprs); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestBuilder_ValidatesSchemas(t *testing.T) {
	plans := NewArena()
	exprs := NewExprArena()
	scan := addInventoryScan(plans, nil)

	if _, err := NewBuilder(scan, plans, exprs).Unpivot(UnpivotArgs{
		Index: []string{"missing"},
		On:    []string{"weight"},
	}); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}

	if _, err := NewBuilder(scan, plans, exprs).ProjectSimple([]ExprNode{
		exprs.Add(NewColumn("missing")),
	}); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}

	out, err := NewBuilder(scan, plans, exprs).Unpivot(UnpivotArgs{
		Index: []string{"sku"},
		On:    []string{"count"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.IRType != IRTypeUnpivot || out.Unpivot.Source != scan {
		t.Errorf("built node = %+v, want unpivot over the scan", out)
	}
}

func TestArena_Replace(t *testing.T) {
	plans := NewArena()
	scan := addInventoryScan(plans, nil)

	old := plans.Replace(scan, IR{
		IRType: IRTypeScan,
		Scan: &Scan{
			Table:       "inventory",
			TableSchema: inventorySchema(),
			Projection:  []string{"sku"},
		},
	})

	if old.Scan.Projection != nil {
		t.Errorf("old entry projection = %v, want none", old.Scan.Projection)
	}
	if got := plans.Get(scan).Scan.Projection; len(got) != 1 || got[0] != "sku" {
		t.Errorf("new entry projection = %v, want [sku]", got)
	}
	if plans.Len() != 1 {
		t.Errorf("arena length = %d, want 1", plans.Len())
	}
}
