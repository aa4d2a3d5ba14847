package execution

import (
	"testing"

	"github.com/prismql/prism/prism"
)

func TestDistinct_Run(t *testing.T) {
	tests := []struct {
		name  string
		input []Record
		want  []Record
	}{
		{
			name: "all distinct",
			input: []Record{
				record(prism.NewInt(1), prism.NewInt(7)),
				record(prism.NewInt(2), prism.NewInt(10)),
				record(prism.NewInt(3), prism.NewInt(2)),
			},
			want: []Record{
				record(prism.NewInt(1), prism.NewInt(7)),
				record(prism.NewInt(2), prism.NewInt(10)),
				record(prism.NewInt(3), prism.NewInt(2)),
			},
		},
		{
			name: "duplicates keep the first occurrence",
			input: []Record{
				record(prism.NewInt(1), prism.NewInt(7)),
				record(prism.NewInt(1), prism.NewInt(7)),
				record(prism.NewInt(2), prism.NewInt(7)),
				record(prism.NewInt(1), prism.NewInt(7)),
			},
			want: []Record{
				record(prism.NewInt(1), prism.NewInt(7)),
				record(prism.NewInt(2), prism.NewInt(7)),
			},
		},
		{
			name: "nulls compare equal to each other",
			input: []Record{
				record(prism.NewNull()),
				record(prism.NewNull()),
			},
			want: []Record{
				record(prism.NewNull()),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewInMemoryRecords(tt.input, identityColumns(len(tt.input[0].Values)))
			got := runAndCollect(t, NewDistinct(source))
			assertRecordsEqual(t, got, tt.want)
		})
	}
}

func identityColumns(n int) []int {
	columns := make([]int, n)
	for i := range columns {
		columns[i] = i
	}
	return columns
}
