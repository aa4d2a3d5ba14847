package functions

import (
	"testing"

	"github.com/prismql/prism/prism"
)

func TestClip(t *testing.T) {
	tests := []struct {
		name     string
		value    prism.Value
		min, max prism.Value
		want     prism.Value
	}{
		{
			name:  "inside bounds",
			value: prism.NewInt(5),
			min:   prism.NewInt(1),
			max:   prism.NewInt(10),
			want:  prism.NewInt(5),
		},
		{
			name:  "below minimum",
			value: prism.NewInt(-3),
			min:   prism.NewInt(0),
			max:   prism.NewInt(10),
			want:  prism.NewInt(0),
		},
		{
			name:  "above maximum",
			value: prism.NewFloat(12.5),
			min:   prism.NewFloat(0),
			max:   prism.NewFloat(10),
			want:  prism.NewFloat(10),
		},
		{
			name:  "null minimum leaves the lower side unbounded",
			value: prism.NewInt(-100),
			min:   prism.NewNull(),
			max:   prism.NewInt(10),
			want:  prism.NewInt(-100),
		},
		{
			name:  "null maximum leaves the upper side unbounded",
			value: prism.NewInt(100),
			min:   prism.NewInt(0),
			max:   prism.NewNull(),
			want:  prism.NewInt(100),
		},
		{
			name:  "both bounds null",
			value: prism.NewInt(7),
			min:   prism.NewNull(),
			max:   prism.NewNull(),
			want:  prism.NewInt(7),
		},
		{
			name:  "null input stays null",
			value: prism.NewNull(),
			min:   prism.NewInt(0),
			max:   prism.NewInt(10),
			want:  prism.NewNull(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clip(tt.value, tt.min, tt.max)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Clip() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClipMin(t *testing.T) {
	got, err := ClipMin(prism.NewInt(-5), prism.NewInt(0))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(prism.NewInt(0)) {
		t.Errorf("ClipMin() = %s, want 0", got)
	}

	got, err = ClipMin(prism.NewInt(5), prism.NewNull())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(prism.NewInt(5)) {
		t.Errorf("ClipMin() with null bound = %s, want 5", got)
	}
}

func TestClipMax(t *testing.T) {
	got, err := ClipMax(prism.NewFloat(5), prism.NewFloat(2.5))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(prism.NewFloat(2.5)) {
		t.Errorf("ClipMax() = %s, want 2.5", got)
	}
}

func TestClip_NonNumeric(t *testing.T) {
	if _, err := Clip(prism.NewString("a"), prism.NewInt(0), prism.NewInt(1)); err == nil {
		t.Fatal("Clip() over a string succeeded, want error")
	}
}
