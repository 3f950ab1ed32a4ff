package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineKind tags a line of a block diff.
type LineKind string

const (
	LineEqual   LineKind = "equal"
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
)

// DiffLine is one line of a side-by-side comparison of two similar blocks.
type DiffLine struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// BlockDiff returns a line-level diff from a to b.
func BlockDiff(a, b string) []DiffLine {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(ca, cb, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	out := make([]DiffLine, 0, len(diffs))
	for _, d := range diffs {
		kind := LineEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = LineAdded
		case diffmatchpatch.DiffDelete:
			kind = LineRemoved
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Kind: kind, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}
