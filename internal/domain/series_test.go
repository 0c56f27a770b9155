package domain

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSequence(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		numeric bool
	}{
		{"1", 1, true},
		{"2.5", 2.5, true},
		{" 10 ", 10, true},
		{"0", 0, true},
		{"", 0, false},
		{"Book Zero", 0, false},
		{"1.2.3", 0, false},
		{".5", 0, false},
		{"3a", 0, false},
		{"-1", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseSequence(tt.in)
		assert.Equal(t, tt.numeric, ok, "numeric(%q)", tt.in)
		assert.InDelta(t, tt.want, got, 0.0001, "value(%q)", tt.in)
	}
}

func TestCompareSequence_NonNumericLast(t *testing.T) {
	seqs := []string{"", "10", "Prequel", "2", "1.5"}
	slices.SortStableFunc(seqs, CompareSequence)
	assert.Equal(t, []string{"1.5", "2", "10", "", "Prequel"}, seqs)
}
