package structurer

import "github.com/dgallion1/wikistruct/internal/blocktree"

// Shorthand constructors for building block-tree fixtures.

func text(raw string) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.Text, Raw: raw}
}

func heading(level int, title string) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.Heading, Level: level, Children: []*blocktree.Node{text(title)}}
}

func para(parts ...*blocktree.Node) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.Paragraph, Children: parts}
}

func ptext(raw string) *blocktree.Node {
	return para(text(raw))
}

func link(label string) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.Link, Children: []*blocktree.Node{text(label)}}
}

func list(items ...string) *blocktree.Node {
	n := &blocktree.Node{Kind: blocktree.List}
	for _, it := range items {
		n.Children = append(n.Children, &blocktree.Node{
			Kind:     blocktree.ListItem,
			Children: []*blocktree.Node{text(it)},
		})
	}
	return n
}

func cell(parts ...*blocktree.Node) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.TableCell, Children: parts}
}

func textCell(raw string) *blocktree.Node {
	return cell(text(raw))
}

func row(cells ...*blocktree.Node) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.TableRow, Children: cells}
}

func textRow(texts ...string) *blocktree.Node {
	cells := make([]*blocktree.Node, 0, len(texts))
	for _, t := range texts {
		cells = append(cells, textCell(t))
	}
	return row(cells...)
}

func tableHead(rows ...*blocktree.Node) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.TableHead, Children: rows}
}

func tableBody(rows ...*blocktree.Node) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.TableBody, Children: rows}
}

func table(parts ...*blocktree.Node) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.Table, Children: parts}
}
