package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCollapse_FirstBySequence(t *testing.T) {
	c := ResolveCollapse([]SeriesCandidate{
		{
			SeriesID: "ser-a", Name: "Alpha", NameIgnorePrefix: "Alpha", NumBooks: 4,
			Books: []CandidateBook{
				{BookSeriesID: "bs-3", BookID: "b3", Sequence: "10"},
				{BookSeriesID: "bs-x", BookID: "bx", Sequence: ""},
				{BookSeriesID: "bs-2", BookID: "b2", Sequence: "2"},
				{BookSeriesID: "bs-1", BookID: "b1", Sequence: "1.5"},
			},
		},
	})

	require.Len(t, c.Representatives, 1)
	rep := c.Representatives["bs-1"]
	assert.Equal(t, "b1", rep.BookID)
	assert.Equal(t, "ser-a", rep.SeriesID)
	assert.Equal(t, "1.5", rep.Sequence)
	assert.Equal(t, 4, rep.NumBooks)
	assert.Equal(t, []string{"b2", "b3", "bx"}, c.Exclude)
	assert.Equal(t, []string{"bs-1"}, c.RepresentativeRows())
}

func TestResolveCollapse_NonNumericOnlySeries(t *testing.T) {
	c := ResolveCollapse([]SeriesCandidate{
		{
			SeriesID: "ser-a",
			Books: []CandidateBook{
				{BookSeriesID: "bs-2", BookID: "b2", Sequence: "Prequel"},
				{BookSeriesID: "bs-1", BookID: "b1"},
			},
		},
	})

	// Ties fall back to book id.
	require.Contains(t, c.Representatives, "bs-1")
	assert.Equal(t, []string{"b2"}, c.Exclude)
}

func TestResolveCollapse_BookInTwoSeries(t *testing.T) {
	// b1 leads both series. ser-a is visited first and claims it, so ser-b
	// is represented by its next book and b1 is never excluded.
	c := ResolveCollapse([]SeriesCandidate{
		{
			SeriesID: "ser-b", Name: "Beta",
			Books: []CandidateBook{
				{BookSeriesID: "bs-b1", BookID: "b1", Sequence: "1"},
				{BookSeriesID: "bs-b4", BookID: "b4", Sequence: "2"},
				{BookSeriesID: "bs-b5", BookID: "b5", Sequence: "3"},
			},
		},
		{
			SeriesID: "ser-a", Name: "Alpha",
			Books: []CandidateBook{
				{BookSeriesID: "bs-a1", BookID: "b1", Sequence: "1"},
				{BookSeriesID: "bs-a2", BookID: "b2", Sequence: "2"},
			},
		},
	})

	require.Len(t, c.Representatives, 2)
	assert.Equal(t, "b1", c.Representatives["bs-a1"].BookID)
	assert.Equal(t, "b4", c.Representatives["bs-b4"].BookID)
	assert.Equal(t, []string{"b2", "b5"}, c.Exclude)
}

func TestResolveCollapse_ExcludedThenRepresentative(t *testing.T) {
	// b2 trails in ser-a but leads ser-b; it must end up visible.
	c := ResolveCollapse([]SeriesCandidate{
		{
			SeriesID: "ser-a",
			Books: []CandidateBook{
				{BookSeriesID: "bs-a1", BookID: "b1", Sequence: "1"},
				{BookSeriesID: "bs-a2", BookID: "b2", Sequence: "2"},
			},
		},
		{
			SeriesID: "ser-b",
			Books: []CandidateBook{
				{BookSeriesID: "bs-b2", BookID: "b2", Sequence: "1"},
				{BookSeriesID: "bs-b3", BookID: "b3", Sequence: "2"},
			},
		},
	})

	assert.Contains(t, c.Representatives, "bs-a1")
	assert.Contains(t, c.Representatives, "bs-b2")
	assert.Equal(t, []string{"b3"}, c.Exclude)
}

func TestResolveCollapse_Deterministic(t *testing.T) {
	input := []SeriesCandidate{
		{SeriesID: "ser-2", Books: []CandidateBook{{BookSeriesID: "x1", BookID: "b1", Sequence: "1"}}},
		{SeriesID: "ser-1", Books: []CandidateBook{{BookSeriesID: "y1", BookID: "b1", Sequence: "1"}, {BookSeriesID: "y2", BookID: "b2", Sequence: "2"}}},
	}
	reversed := []SeriesCandidate{input[1], input[0]}

	assert.Equal(t, ResolveCollapse(input), ResolveCollapse(reversed))
}

func TestResolveCollapse_Empty(t *testing.T) {
	c := ResolveCollapse(nil)
	assert.Empty(t, c.Exclude)
	assert.Empty(t, c.Representatives)
	assert.Empty(t, c.RepresentativeRows())
}

func TestSyntheticColumns(t *testing.T) {
	assert.Contains(t, AuthorNameColumn(AuthorNameFirstLast), "group_concat(a.name, ', '")
	assert.Contains(t, AuthorNameColumn(AuthorNameLastFirst), "group_concat(a.last_first, ', '")
	assert.Contains(t, DisplayTitleColumn(false), "SELECT s.name FROM")
	assert.Contains(t, DisplayTitleColumn(false), ", b.title)")
	assert.Contains(t, DisplayTitleColumn(true), "s.name_ignore_prefix")
	assert.Contains(t, DisplayTitleColumn(true), ", b.title_ignore_prefix)")
	assert.Equal(t, `[]`, RepresentativeRowsParam(nil))
	assert.Equal(t, `["bs-1"]`, RepresentativeRowsParam(&Collapse{Representatives: map[string]Representative{"bs-1": {}}}))
}
