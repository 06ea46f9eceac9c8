package structurer

import (
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

// Section is a titled run of content produced by level grouping. Subsections
// hold the sections one heading level deeper.
type Section struct {
	Title       string    `json:"title"`
	Content     []string  `json:"content"`
	Subsections []Section `json:"subsections,omitempty"`
}

// GroupByLevel groups a node sequence into sections delimited by headings at
// exactly level, recursing into runs under deeper headings to build a nested
// outline. Leaf content (paragraphs, lists, tables) is flattened to text and
// attached to the open section; content preceding the first heading at level
// is dropped, as is deeper content with no open section to hang from.
func GroupByLevel(nodes []*blocktree.Node, level int) []Section {
	var result []Section
	var current *Section

	seal := func() {
		if current != nil {
			result = append(result, *current)
			current = nil
		}
	}

	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch {
		case n.IsHeading(level):
			seal()
			current = &Section{
				Title:   strings.TrimSpace(FlattenText(n)),
				Content: []string{},
			}

		case n.Kind == blocktree.Heading && n.Level > level:
			// Everything up to the next heading at or above this level
			// belongs to the deeper outline.
			end := i + 1
			for end < len(nodes) {
				h := nodes[end]
				if h.Kind == blocktree.Heading && h.Level <= level {
					break
				}
				end++
			}
			subs := GroupByLevel(nodes[i:end], level+1)
			if current != nil && len(subs) > 0 {
				current.Subsections = append(current.Subsections, subs...)
			}
			i = end - 1

		default:
			text, ok := leafText(n)
			if ok && text != "" && current != nil {
				current.Content = append(current.Content, text)
			}
		}
	}
	seal()
	return result
}
