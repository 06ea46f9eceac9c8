package structurer

import (
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

// occasionHeader is the first-column header of a quotes table. Wiki authors
// sometimes repeat the header row inside the table body; such rows are noise.
const occasionHeader = "场合"

// QuoteEntry is one spoken line from a quotes table.
type QuoteEntry struct {
	Occasion string `json:"occasion"`
	Line     string `json:"line"`
}

// TableText renders a table as pipe-delimited lines, one line per row, rows
// in document order.
func TableText(table *blocktree.Node) string {
	var lines []string
	for _, part := range table.Children {
		if part.Kind != blocktree.TableHead && part.Kind != blocktree.TableBody {
			continue
		}
		for _, row := range part.Children {
			if row.Kind != blocktree.TableRow {
				continue
			}
			cells := make([]string, 0, len(row.Children))
			for _, cell := range row.Children {
				cells = append(cells, strings.TrimSpace(FlattenText(cell)))
			}
			lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n")
}

// QuoteEntries converts a quotes table into records built from the first two
// columns of each body row. Rows are skipped when every cell is blank, when
// the first cell repeats the first-column header, or when fewer than two
// cells are present.
func QuoteEntries(table *blocktree.Node) []QuoteEntry {
	skip := map[string]bool{occasionHeader: true}
	if headers := headerTexts(table); len(headers) > 0 && headers[0] != "" {
		skip[headers[0]] = true
	}

	var entries []QuoteEntry
	for _, part := range table.Children {
		if part.Kind != blocktree.TableBody {
			continue
		}
		for _, row := range part.Children {
			if row.Kind != blocktree.TableRow {
				continue
			}
			texts := make([]string, 0, len(row.Children))
			blank := true
			for _, cell := range row.Children {
				t := strings.TrimSpace(FlattenText(cell))
				if t != "" {
					blank = false
				}
				texts = append(texts, t)
			}
			if blank || len(texts) < 2 || skip[texts[0]] {
				continue
			}
			entries = append(entries, QuoteEntry{Occasion: texts[0], Line: texts[1]})
		}
	}
	return entries
}

// headerTexts collects the cell texts of a table's head, descending through
// rows when the head wraps its cells in one.
func headerTexts(table *blocktree.Node) []string {
	var texts []string
	var collect func(n *blocktree.Node)
	collect = func(n *blocktree.Node) {
		switch n.Kind {
		case blocktree.TableCell:
			texts = append(texts, strings.TrimSpace(FlattenText(n)))
		case blocktree.TableHead, blocktree.TableRow:
			for _, c := range n.Children {
				collect(c)
			}
		}
	}
	for _, part := range table.Children {
		if part.Kind == blocktree.TableHead {
			collect(part)
		}
	}
	return texts
}
