package structurer

import (
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

// DefaultMajorLevel is the heading depth that delimits top-level sections in
// the wiki layout this engine was built for.
const DefaultMajorLevel = 2

// SegmentOptions adjusts section segmentation.
type SegmentOptions struct {
	// MajorLevel is the heading depth that delimits sections. Zero means
	// DefaultMajorLevel.
	MajorLevel int
	// PreambleTitle, when non-empty, collects nodes appearing before the
	// first major heading under a synthetic section with this title. By
	// default such nodes are dropped, matching the upstream pages where
	// nothing of interest precedes the first section heading.
	PreambleTitle string
}

// Segment splits a top-level node sequence into named sections delimited by
// headings at the major level. Only sections whose flattened heading text is
// in want are collected; content under any other title is discarded by the
// interest filter. Subsection headings stay inline in the
// returned node slices for later shaping.
//
// If a document repeats a section title, the last occurrence wins: each
// flush overwrites the map entry. Kept as-is from the original behavior.
func Segment(nodes []*blocktree.Node, want map[string]bool, opts SegmentOptions) map[string][]*blocktree.Node {
	level := opts.MajorLevel
	if level <= 0 {
		level = DefaultMajorLevel
	}

	sections := make(map[string][]*blocktree.Node)
	current := ""
	var acc []*blocktree.Node

	flush := func() {
		if current == "" {
			if opts.PreambleTitle != "" && len(acc) > 0 {
				sections[opts.PreambleTitle] = acc
			}
			return
		}
		if want[current] {
			sections[current] = acc
		}
	}

	for _, n := range nodes {
		if n.IsHeading(level) {
			flush()
			current = strings.TrimSpace(FlattenText(n))
			acc = nil
			continue
		}
		switch {
		case current == "":
			if opts.PreambleTitle != "" {
				acc = append(acc, n)
			}
		case want[current]:
			acc = append(acc, n)
		}
	}
	flush()
	return sections
}
