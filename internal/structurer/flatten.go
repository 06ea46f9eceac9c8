// Package structurer turns a flat block-tree into nested records: it
// segments documents by heading hierarchy, flattens inline content to plain
// text, linearizes tables, and extracts key-value profile tables.
//
// Every function here is pure and synchronous. Malformed units (short table
// rows, empty cells) are skipped, never fatal; a missing section or table
// yields an empty result.
package structurer

import (
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

// FlattenText reduces a node and its subtree to plain text in document
// order. Text nodes return their raw content verbatim; an image prefers its
// title attribute over its children. Any other node concatenates the
// flattened text of its children, so the function is total over the node
// variant; unknown or childless nodes yield "".
func FlattenText(n *blocktree.Node) string {
	switch n.Kind {
	case blocktree.Text:
		return n.Raw
	case blocktree.Image:
		if n.Title != "" {
			return n.Title
		}
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(FlattenText(c))
	}
	return sb.String()
}

// FlattenList joins the flattened text of each list item with newlines.
func FlattenList(list *blocktree.Node) string {
	var items []string
	for _, c := range list.Children {
		if c.Kind != blocktree.ListItem {
			continue
		}
		if t := strings.TrimSpace(FlattenText(c)); t != "" {
			items = append(items, t)
		}
	}
	return strings.Join(items, "\n")
}

// leafText returns the text form of a leaf content node. The second return
// is false for anything that is not a paragraph, list, or table.
func leafText(n *blocktree.Node) (string, bool) {
	switch n.Kind {
	case blocktree.Paragraph:
		return strings.TrimSpace(FlattenText(n)), true
	case blocktree.List:
		return FlattenList(n), true
	case blocktree.Table:
		return TableText(n), true
	}
	return "", false
}
