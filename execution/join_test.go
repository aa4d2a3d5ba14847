package execution

import (
	"testing"

	"github.com/prismql/prism/prism"
)

func TestJoin_Run(t *testing.T) {
	// Left columns: id, name. Right columns: id, total.
	left := NewInMemoryRecords([]Record{
		record(prism.NewInt(1), prism.NewString("a")),
		record(prism.NewInt(2), prism.NewString("b")),
		record(prism.NewInt(3), prism.NewString("c")),
	}, []int{0, 1})
	right := NewInMemoryRecords([]Record{
		record(prism.NewInt(2), prism.NewFloat(20)),
		record(prism.NewInt(3), prism.NewFloat(30)),
		record(prism.NewInt(3), prism.NewFloat(31)),
	}, []int{0, 1})

	join := NewJoin(left, right,
		[]Expression{NewVariable(0)},
		[]Expression{NewVariable(0)},
	)

	got := runAndCollect(t, join)
	want := []Record{
		record(prism.NewInt(2), prism.NewString("b"), prism.NewInt(2), prism.NewFloat(20)),
		record(prism.NewInt(3), prism.NewString("c"), prism.NewInt(3), prism.NewFloat(30)),
		record(prism.NewInt(3), prism.NewString("c"), prism.NewInt(3), prism.NewFloat(31)),
	}
	assertRecordsEqual(t, got, want)
}

func TestJoin_NoMatches(t *testing.T) {
	left := NewInMemoryRecords([]Record{
		record(prism.NewInt(1)),
	}, []int{0})
	right := NewInMemoryRecords([]Record{
		record(prism.NewInt(2)),
	}, []int{0})

	join := NewJoin(left, right,
		[]Expression{NewVariable(0)},
		[]Expression{NewVariable(0)},
	)

	got := runAndCollect(t, join)
	assertRecordsEqual(t, got, nil)
}
