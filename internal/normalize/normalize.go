// Package normalize derives the sortable forms of titles and names.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultSortingPrefixes are the leading articles ignored when sorting titles.
var DefaultSortingPrefixes = []string{"the", "a"}

// fold case-folds s. A Caser is stateful, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// TitleParts splits a title into its sortable remainder and the leading
// prefix it starts with. The prefix is empty when none of prefixes match.
func TitleParts(title string, prefixes []string) (sortable, prefix string) {
	title = strings.TrimSpace(title)
	for _, p := range prefixes {
		n := len(p)
		if n == 0 || len(title) <= n+1 || title[n] != ' ' {
			continue
		}
		if fold(title[:n]) == fold(p) {
			return strings.TrimSpace(title[n+1:]), title[:n]
		}
	}
	return title, ""
}

// TitleIgnorePrefix moves a leading prefix to the end of the title:
// "The Hobbit" becomes "Hobbit, The".
func TitleIgnorePrefix(title string, prefixes []string) string {
	sortable, prefix := TitleParts(title, prefixes)
	if prefix == "" {
		return sortable
	}
	return sortable + ", " + prefix
}

// LastFirst renders a personal name as "Last, First".
// Names that already contain a comma or have a single part are returned trimmed.
func LastFirst(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ",") {
		return name
	}
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	last := parts[len(parts)-1]
	return last + ", " + strings.Join(parts[:len(parts)-1], " ")
}

// Values trims and de-duplicates a list of free-form values, preserving order.
// Duplicates are detected case-insensitively; the first spelling wins.
func Values(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := fold(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
