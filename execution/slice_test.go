package execution

import (
	"testing"

	"github.com/prismql/prism/prism"
)

func TestSlice_Run(t *testing.T) {
	input := []Record{
		record(prism.NewInt(1)),
		record(prism.NewInt(2)),
		record(prism.NewInt(3)),
		record(prism.NewInt(4)),
		record(prism.NewInt(5)),
	}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []Record
	}{
		{
			name:   "offset and limit",
			offset: 1,
			limit:  2,
			want: []Record{
				record(prism.NewInt(2)),
				record(prism.NewInt(3)),
			},
		},
		{
			name:   "no limit",
			offset: 3,
			limit:  -1,
			want: []Record{
				record(prism.NewInt(4)),
				record(prism.NewInt(5)),
			},
		},
		{
			name:   "limit zero",
			offset: 0,
			limit:  0,
			want:   nil,
		},
		{
			name:   "offset past the end",
			offset: 10,
			limit:  2,
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewInMemoryRecords(input, []int{0})
			got := runAndCollect(t, NewSlice(source, tt.offset, tt.limit))
			assertRecordsEqual(t, got, tt.want)
		})
	}
}
