package model

import "sort"

// AnswerValue holds one answer. Which fields are meaningful depends on the
// question type: Index or Indices for mcq, Text for descriptive, Source and
// Language for coding.
type AnswerValue struct {
	Index    *int   `json:"index,omitempty"`
	Indices  []int  `json:"indices,omitempty"`
	Text     string `json:"text,omitempty"`
	Source   string `json:"source,omitempty"`
	Language string `json:"language,omitempty"`
}

// Empty reports whether the value carries no answer at all.
func (a AnswerValue) Empty() bool {
	return a.Index == nil && len(a.Indices) == 0 && a.Text == "" && a.Source == ""
}

// Selected returns the chosen option indices as a sorted, de-duplicated set.
// A scalar Index counts as a one-element set. Negative indices are dropped.
func (a AnswerValue) Selected() []int {
	seen := make(map[int]struct{}, len(a.Indices)+1)
	if a.Index != nil && *a.Index >= 0 {
		seen[*a.Index] = struct{}{}
	}
	for _, i := range a.Indices {
		if i >= 0 {
			seen[i] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
