package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser converts markdown into the block tree consumed by the
// structuring engine. Tables and strikethrough are enabled: wiki snapshots
// rely on both.
type MarkdownParser struct {
	md goldmark.Markdown
}

func NewMarkdown() *MarkdownParser {
	return &MarkdownParser{
		md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]*blocktree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := p.md.Parser().Parse(text.NewReader(src))

	var nodes []*blocktree.Node
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if bn := convert(n, src); bn != nil {
			nodes = append(nodes, bn)
		}
	}
	return nodes, nil
}

// convert maps one goldmark node onto the block-tree variant. Nodes with no
// textual value (thematic breaks, raw HTML) map to nil and are dropped.
func convert(n ast.Node, src []byte) *blocktree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return &blocktree.Node{Kind: blocktree.Heading, Level: node.Level, Children: convertChildren(n, src)}
	case *ast.Paragraph, *ast.TextBlock, *ast.Blockquote:
		return &blocktree.Node{Kind: blocktree.Paragraph, Children: convertChildren(n, src)}
	case *ast.Text:
		return &blocktree.Node{Kind: blocktree.Text, Raw: string(node.Segment.Value(src))}
	case *ast.String:
		return &blocktree.Node{Kind: blocktree.Text, Raw: string(node.Value)}
	case *ast.Emphasis:
		kind := blocktree.Emphasis
		if node.Level >= 2 {
			kind = blocktree.Strong
		}
		return &blocktree.Node{Kind: kind, Children: convertChildren(n, src)}
	case *ast.Link:
		return &blocktree.Node{Kind: blocktree.Link, Children: convertChildren(n, src)}
	case *ast.AutoLink:
		return &blocktree.Node{
			Kind:     blocktree.Link,
			Children: []*blocktree.Node{{Kind: blocktree.Text, Raw: string(node.URL(src))}},
		}
	case *ast.Image:
		return &blocktree.Node{Kind: blocktree.Image, Title: string(node.Title), Children: convertChildren(n, src)}
	case *ast.List:
		return &blocktree.Node{Kind: blocktree.List, Children: convertChildren(n, src)}
	case *ast.ListItem:
		return &blocktree.Node{Kind: blocktree.ListItem, Children: convertChildren(n, src)}
	case *ast.CodeSpan:
		return &blocktree.Node{Kind: blocktree.Text, Raw: inlineText(n, src)}
	case *ast.FencedCodeBlock:
		return codeBlock(n, src)
	case *ast.CodeBlock:
		return codeBlock(n, src)
	case *east.Table:
		return convertTable(node, src)
	case *east.Strikethrough:
		return &blocktree.Node{Kind: blocktree.Emphasis, Children: convertChildren(n, src)}
	case *ast.ThematicBreak, *ast.HTMLBlock, *ast.RawHTML:
		return nil
	default:
		// Keep unknown containers reachable through the generic
		// concatenate-children flattening rule.
		if n.ChildCount() == 0 {
			return nil
		}
		return &blocktree.Node{Kind: blocktree.Paragraph, Children: convertChildren(n, src)}
	}
}

func convertChildren(n ast.Node, src []byte) []*blocktree.Node {
	var children []*blocktree.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if bn := convert(c, src); bn != nil {
			children = append(children, bn)
		}
	}
	return children
}

// inlineText gathers the raw segments of an inline node's text children.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
		}
	}
	return sb.String()
}

func codeBlock(n ast.Node, src []byte) *blocktree.Node {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(src))
	}
	raw := strings.TrimRight(sb.String(), "\n")
	if raw == "" {
		return nil
	}
	return &blocktree.Node{
		Kind:     blocktree.Paragraph,
		Children: []*blocktree.Node{{Kind: blocktree.Text, Raw: raw}},
	}
}

// convertTable rebuilds a goldmark table as table_head/table_body parts, each
// holding table_row nodes of table_cell children.
func convertTable(t *east.Table, src []byte) *blocktree.Node {
	table := &blocktree.Node{Kind: blocktree.Table}
	var body *blocktree.Node
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *east.TableHeader:
			head := &blocktree.Node{
				Kind:     blocktree.TableHead,
				Children: []*blocktree.Node{convertRow(c, src)},
			}
			table.Children = append(table.Children, head)
		case *east.TableRow:
			if body == nil {
				body = &blocktree.Node{Kind: blocktree.TableBody}
				table.Children = append(table.Children, body)
			}
			body.Children = append(body.Children, convertRow(c, src))
		}
	}
	return table
}

func convertRow(row ast.Node, src []byte) *blocktree.Node {
	r := &blocktree.Node{Kind: blocktree.TableRow}
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableCell); !ok {
			continue
		}
		r.Children = append(r.Children, &blocktree.Node{
			Kind:     blocktree.TableCell,
			Children: convertChildren(c, src),
		})
	}
	return r
}
