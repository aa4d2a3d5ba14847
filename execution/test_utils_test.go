package execution

import (
	"context"
	"testing"

	"github.com/prismql/prism/prism"
)

func runAndCollect(t *testing.T, node Node) []Record {
	t.Helper()
	var out []Record
	if err := node.Run(ExecutionContext{
		Context: context.Background(),
	}, func(ctx ProduceContext, record Record) error {
		out = append(out, record)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return out
}

func record(values ...prism.Value) Record {
	return NewRecord(values)
}

func assertRecordsEqual(t *testing.T, got, want []Record) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if len(got[i].Values) != len(want[i].Values) {
			t.Fatalf("record %d has %d values, want %d", i, len(got[i].Values), len(want[i].Values))
		}
		for j := range want[i].Values {
			if !got[i].Values[j].Equal(want[i].Values[j]) {
				t.Errorf("record %d column %d = %s, want %s", i, j, got[i].Values[j], want[i].Values[j])
			}
		}
	}
}
