package mimeapps

import (
	"github.com/google/go-cmp/cmp"
	"testing"
)

func TestRemoveDuplicates(t *testing.T) {
	tests := []struct {
		input []string
		want  []string
	}{
		{input: nil, want: nil},
		{input: []string{}, want: []string{}},
		{input: []string{"a", "b", "a", "c", "b"}, want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		got := removeDuplicates(tt.input)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("removeDuplicates(%v) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}
