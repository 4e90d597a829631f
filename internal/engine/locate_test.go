package engine

import (
	"reflect"
	"testing"

	"github.com/flashflow-ai/flashflow/pkg/types"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name      string
		plain     string
		needle    string
		excluding []types.Range
		want      []types.Range
	}{
		{
			name:   "single occurrence",
			plain:  "i goed home",
			needle: "goed",
			want:   []types.Range{{From: 2, To: 6}},
		},
		{
			name:   "multiple non-overlapping",
			plain:  "go go go",
			needle: "go",
			want:   []types.Range{{From: 0, To: 2}, {From: 3, To: 5}, {From: 6, To: 8}},
		},
		{
			name:   "self-overlapping needle first found wins",
			plain:  "aaaa",
			needle: "aa",
			want:   []types.Range{{From: 0, To: 2}, {From: 2, To: 4}},
		},
		{
			name:   "not found",
			plain:  "hello world",
			needle: "absent",
			want:   nil,
		},
		{
			name:   "empty needle matches nothing",
			plain:  "hello",
			needle: "",
			want:   nil,
		},
		{
			name:      "excluded range skipped",
			plain:     "go go go",
			needle:    "go",
			excluding: []types.Range{{From: 0, To: 2}},
			want:      []types.Range{{From: 3, To: 5}, {From: 6, To: 8}},
		},
		{
			name:      "partial overlap with exclusion skipped",
			plain:     "the big bad wolf",
			needle:    "bad wolf",
			excluding: []types.Range{{From: 4, To: 11}},
			want:      nil,
		},
		{
			name:   "regex metacharacters are literal",
			plain:  "cost is $5.00 (net)",
			needle: "$5.00 (net)",
			want:   []types.Range{{From: 8, To: 19}},
		},
		{
			name:   "needle longer than text",
			plain:  "hi",
			needle: "hello",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locate(tt.plain, tt.needle, tt.excluding)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Locate(%q, %q, %v) = %v, want %v", tt.plain, tt.needle, tt.excluding, got, tt.want)
			}
		})
	}
}
