// Package blocktree defines the block-level document tree produced by the
// parsers and consumed by the structuring engine.
package blocktree

// Kind tags a node variant. The set is closed: every parser output maps to
// one of these, and every structuring component switches exhaustively on it.
type Kind string

const (
	Text      Kind = "text"
	Heading   Kind = "heading"
	Paragraph Kind = "paragraph"
	Strong    Kind = "strong"
	Emphasis  Kind = "emphasis"
	Link      Kind = "link"
	Image     Kind = "image"
	List      Kind = "list"
	ListItem  Kind = "list_item"
	Table     Kind = "table"
	TableHead Kind = "table_head"
	TableBody Kind = "table_body"
	TableRow  Kind = "table_row"
	TableCell Kind = "table_cell"
)

// Node is one element of a parsed document. Only Text nodes carry Raw; only
// Heading nodes carry Level; only Image nodes carry Title. Children are in
// document order.
type Node struct {
	Kind     Kind
	Raw      string  // literal content (Text only)
	Level    int     // heading depth 1..6 (Heading only)
	Title    string  // title/alt attribute (Image only)
	Children []*Node
}

// IsHeading reports whether the node is a heading at the given level.
func (n *Node) IsHeading(level int) bool {
	return n.Kind == Heading && n.Level == level
}
