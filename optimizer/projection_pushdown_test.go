package optimizer

import (
	"reflect"
	"testing"

	"github.com/prismql/prism/plan"
	"github.com/prismql/prism/prism"
)

func salesSchema() plan.Schema {
	return plan.NewSchema([]plan.SchemaField{
		{Name: "id", Type: prism.Int},
		{Name: "year2020", Type: prism.Float},
		{Name: "year2021", Type: prism.Float},
	})
}

func addSalesScan(plans *plan.Arena) plan.Node {
	return plans.Add(plan.IR{
		IRType: plan.IRTypeScan,
		Scan: &plan.Scan{
			Table:       "sales",
			TableSchema: salesSchema(),
		},
	})
}

func addUnpivot(plans *plan.Arena, source plan.Node, index, on []string) plan.Node {
	return plans.Add(plan.IR{
		IRType: plan.IRTypeUnpivot,
		Unpivot: &plan.Unpivot{
			Source: source,
			Args: plan.UnpivotArgs{
				Index: index,
				On:    on,
			},
		},
	})
}

func addProjection(plans *plan.Arena, exprs *plan.ExprArena, source plan.Node, columns ...string) plan.Node {
	expressions := make([]plan.ExprNode, len(columns))
	for i, name := range columns {
		expressions[i] = exprs.Add(plan.NewColumn(name))
	}
	return plans.Add(plan.IR{
		IRType: plan.IRTypeSimpleProjection,
		SimpleProjection: &plan.SimpleProjection{
			Source:      source,
			Expressions: expressions,
		},
	})
}

func TestProjectionPushdown_ScanPruning(t *testing.T) {
	tests := []struct {
		name           string
		build          func(plans *plan.Arena, exprs *plan.ExprArena) (root, scan plan.Node)
		wantProjection []string
	}{
		{
			name: "projection over scan narrows the scan",
			build: func(plans *plan.Arena, exprs *plan.ExprArena) (plan.Node, plan.Node) {
				scan := addSalesScan(plans)
				return addProjection(plans, exprs, scan, "year2021", "id"), scan
			},
			// Scan projections keep the table schema's column order.
			wantProjection: []string{"id", "year2021"},
		},
		{
			name: "projection over filter forwards predicate columns",
			build: func(plans *plan.Arena, exprs *plan.ExprArena) (plan.Node, plan.Node) {
				scan := addSalesScan(plans)
				filter := plans.Add(plan.IR{
					IRType: plan.IRTypeFilter,
					Filter: &plan.Filter{
						Source:    scan,
						Predicate: exprs.Add(plan.NewColumn("id")),
					},
				})
				return addProjection(plans, exprs, filter, "year2020"), scan
			},
			wantProjection: []string{"id", "year2020"},
		},
		{
			name: "projection over slice passes the request through",
			build: func(plans *plan.Arena, exprs *plan.ExprArena) (plan.Node, plan.Node) {
				scan := addSalesScan(plans)
				slice := plans.Add(plan.IR{
					IRType: plan.IRTypeSlice,
					Slice: &plan.Slice{
						Source: scan,
						Offset: 1,
						Limit:  2,
					},
				})
				return addProjection(plans, exprs, slice, "year2020"), scan
			},
			wantProjection: []string{"year2020"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := plan.NewArena()
			exprs := plan.NewExprArena()
			root, scan := tt.build(plans, exprs)

			wantSchema, err := plan.ComputeSchema(root, plans, exprs)
			if err != nil {
				t.Fatal(err)
			}

			if err := Optimize(root, plans, exprs); err != nil {
				t.Fatal(err)
			}

			got := plans.Get(scan).Scan.Projection
			if !reflect.DeepEqual(got, tt.wantProjection) {
				t.Errorf("scan projection = %v, want %v", got, tt.wantProjection)
			}

			gotSchema, err := plan.ComputeSchema(root, plans, exprs)
			if err != nil {
				t.Fatal(err)
			}
			if !gotSchema.Equals(wantSchema) {
				t.Errorf("root schema changed: got %s, want %s", gotSchema, wantSchema)
			}
		})
	}
}

func TestProjectionPushdown_RestartBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		build func(plans *plan.Arena, exprs *plan.ExprArena, scan plan.Node) plan.Node
	}{
		{
			name: "distinct",
			build: func(plans *plan.Arena, exprs *plan.ExprArena, scan plan.Node) plan.Node {
				return plans.Add(plan.IR{
					IRType: plan.IRTypeDistinct,
					Distinct: &plan.Distinct{
						Source: scan,
					},
				})
			},
		},
		{
			name: "group by",
			build: func(plans *plan.Arena, exprs *plan.ExprArena, scan plan.Node) plan.Node {
				return plans.Add(plan.IR{
					IRType: plan.IRTypeGroupBy,
					GroupBy: &plan.GroupBy{
						Source: scan,
						Key:    []string{"id"},
						Aggregates: []plan.Aggregate{
							{Name: "sum", Column: "year2020", OutputName: "total", OutputType: prism.Float},
						},
					},
				})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := plan.NewArena()
			exprs := plan.NewExprArena()
			scan := addSalesScan(plans)
			boundary := tt.build(plans, exprs, scan)
			root := addProjection(plans, exprs, boundary, "id")

			if err := Optimize(root, plans, exprs); err != nil {
				t.Fatal(err)
			}

			// A restart boundary discards column constraints from above, so
			// the scan below it must be left untouched.
			if got := plans.Get(scan).Scan.Projection; got != nil {
				t.Errorf("scan projection = %v, want none", got)
			}
		})
	}
}

func TestProjectionPushdown_Idempotence(t *testing.T) {
	plans := plan.NewArena()
	exprs := plan.NewExprArena()
	scan := addSalesScan(plans)
	unpivot := addUnpivot(plans, scan, []string{"id"}, []string{"year2020", "year2021"})
	root := addProjection(plans, exprs, unpivot, "id", "value")

	if err := Optimize(root, plans, exprs); err != nil {
		t.Fatal(err)
	}
	firstSchema, err := plan.ComputeSchema(root, plans, exprs)
	if err != nil {
		t.Fatal(err)
	}
	firstProjection := plans.Get(scan).Scan.Projection

	if err := Optimize(root, plans, exprs); err != nil {
		t.Fatal(err)
	}
	secondSchema, err := plan.ComputeSchema(root, plans, exprs)
	if err != nil {
		t.Fatal(err)
	}

	if !secondSchema.Equals(firstSchema) {
		t.Errorf("schema after second run = %s, want %s", secondSchema, firstSchema)
	}
	if got := plans.Get(scan).Scan.Projection; !reflect.DeepEqual(got, firstProjection) {
		t.Errorf("scan projection after second run = %v, want %v", got, firstProjection)
	}
}

func TestSplitAccProjections(t *testing.T) {
	childSchema := salesSchema()

	tests := []struct {
		name              string
		acc               func(exprs *plan.ExprArena) []plan.ExprNode
		wantForwardable   int
		wantLocal         int
		wantRequiredNames []string
	}{
		{
			name: "empty accumulated set",
			acc: func(exprs *plan.ExprArena) []plan.ExprNode {
				return nil
			},
			wantForwardable:   0,
			wantLocal:         0,
			wantRequiredNames: nil,
		},
		{
			name: "bare columns present in the child schema",
			acc: func(exprs *plan.ExprArena) []plan.ExprNode {
				return []plan.ExprNode{
					exprs.Add(plan.NewColumn("year2020")),
					exprs.Add(plan.NewColumn("id")),
				}
			},
			wantForwardable:   2,
			wantLocal:         0,
			wantRequiredNames: []string{"year2020", "id"},
		},
		{
			name: "column missing from the child schema goes local",
			acc: func(exprs *plan.ExprArena) []plan.ExprNode {
				return []plan.ExprNode{
					exprs.Add(plan.NewColumn("id")),
					exprs.Add(plan.NewColumn("value")),
				}
			},
			wantForwardable:   1,
			wantLocal:         1,
			wantRequiredNames: []string{"id"},
		},
		{
			name: "alias goes local but its inputs are required",
			acc: func(exprs *plan.ExprArena) []plan.ExprNode {
				return []plan.ExprNode{
					exprs.Add(plan.NewAlias("renamed", exprs.Add(plan.NewColumn("year2021")))),
				}
			},
			wantForwardable:   0,
			wantLocal:         1,
			wantRequiredNames: []string{"year2021"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs := plan.NewExprArena()
			forwardable, local, requiredNames := splitAccProjections(tt.acc(exprs), childSchema, exprs)
			if len(forwardable) != tt.wantForwardable {
				t.Errorf("len(forwardable) = %d, want %d", len(forwardable), tt.wantForwardable)
			}
			if len(local) != tt.wantLocal {
				t.Errorf("len(local) = %d, want %d", len(local), tt.wantLocal)
			}
			if !reflect.DeepEqual(requiredNames, tt.wantRequiredNames) {
				t.Errorf("requiredNames = %v, want %v", requiredNames, tt.wantRequiredNames)
			}
		})
	}
}
