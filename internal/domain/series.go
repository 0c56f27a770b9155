package domain

import (
	"strconv"
	"strings"
	"time"
)

// Series groups books of a library under a shared name.
type Series struct {
	Syncable
	LibraryID        string `json:"library_id"`
	Name             string `json:"name"`
	NameIgnorePrefix string `json:"name_ignore_prefix"`
	Description      string `json:"description,omitempty"`
}

// BookSeries is the join row linking a book to a series.
// Sequence is free-form ("1", "1.5", "Book Zero") and compared numerically.
type BookSeries struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	SeriesID  string    `json:"series_id"`
	Sequence  string    `json:"sequence,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ParseSequence returns the numeric value of a series sequence.
// Only plain decimals ("3", "2.5") are numeric; anything else reports false
// and sorts after every numeric sequence.
func ParseSequence(seq string) (float64, bool) {
	seq = strings.Trim(seq, " ")
	if seq == "" || seq[0] < '0' || seq[0] > '9' {
		return 0, false
	}
	if strings.Count(seq, ".") > 1 {
		return 0, false
	}
	for _, r := range seq {
		if (r < '0' || r > '9') && r != '.' {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(seq, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CompareSequence orders two sequences ascending with non-numeric values last.
func CompareSequence(a, b string) int {
	av, aok := ParseSequence(a)
	bv, bok := ParseSequence(b)
	switch {
	case aok && bok:
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}
