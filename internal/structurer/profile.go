package structurer

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

// Field is one profile row.
type Field struct {
	Key   string
	Value string
}

// Profile is the ordered key-value infobox extracted from a document's first
// table. Keys are unique; setting an existing key updates it in place.
type Profile struct {
	fields []Field
}

// Set stores or updates a field.
func (p *Profile) Set(key, value string) {
	for i := range p.fields {
		if p.fields[i].Key == key {
			p.fields[i].Value = value
			return
		}
	}
	p.fields = append(p.fields, Field{Key: key, Value: value})
}

// Get returns the value for key and whether it is present.
func (p *Profile) Get(key string) (string, bool) {
	for _, f := range p.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Len returns the number of fields.
func (p *Profile) Len() int { return len(p.fields) }

// Fields returns the fields in insertion order.
func (p *Profile) Fields() []Field { return p.fields }

// MarshalJSON emits a JSON object with keys in insertion order.
func (p Profile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ProfileOptions configures infobox extraction for one entity kind.
type ProfileOptions struct {
	// HeaderLabels are first-cell texts marking decorative header rows that
	// wiki templates repeat inside the table body; such rows are skipped.
	HeaderLabels []string
	// RelationKey names the field whose value occupies the following row as
	// a list of linked names. Empty disables relation fusion.
	RelationKey string
}

// ExtractProfile scans top-level nodes for the first table and reads it as
// an ordered key-value profile. Rows with an empty first cell or a header
// label are skipped; a row whose key equals RelationKey consumes the next
// row as its value, yielding both a comma-joined field and the name list.
// Subsequent tables are ignored: the profile lives in exactly one infobox.
// A document without a table yields an empty profile.
func ExtractProfile(nodes []*blocktree.Node, opts ProfileOptions) (*Profile, []string) {
	profile := &Profile{}
	table := firstTable(nodes)
	if table == nil {
		return profile, nil
	}

	headers := make(map[string]bool, len(opts.HeaderLabels))
	for _, h := range opts.HeaderLabels {
		headers[h] = true
	}

	var relations []string
	for _, part := range table.Children {
		if part.Kind != blocktree.TableBody {
			continue
		}
		rows := part.Children
		i := 0
		for i < len(rows) {
			row := rows[i]
			if row.Kind != blocktree.TableRow {
				i++
				continue
			}
			key := cellText(row.Children, 0)
			value := cellText(row.Children, 1)
			if key == "" || headers[key] {
				i++
				continue
			}
			if opts.RelationKey != "" && key == opts.RelationKey && i+1 < len(rows) {
				next := rows[i+1]
				if len(next.Children) > 0 {
					relations = filterNames(linkedNames(next.Children[0]))
					profile.Set(key, strings.Join(relations, ","))
				}
				i += 2
				continue
			}
			if value != "" {
				profile.Set(key, value)
			}
			i++
		}
	}
	return profile, relations
}

func firstTable(nodes []*blocktree.Node) *blocktree.Node {
	for _, n := range nodes {
		if n.Kind == blocktree.Table {
			return n
		}
	}
	return nil
}

func cellText(cells []*blocktree.Node, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(FlattenText(cells[idx]))
}

// linkedNames collects candidate names from a cell: the text of each link,
// plus comma- or 、-separated tokens of plain text, descending through
// nested inline nodes.
func linkedNames(n *blocktree.Node) []string {
	var names []string
	switch n.Kind {
	case blocktree.Link:
		for _, c := range n.Children {
			if c.Kind != blocktree.Text {
				continue
			}
			if t := strings.TrimSpace(c.Raw); t != "" {
				names = append(names, t)
			}
		}
	case blocktree.Text:
		for _, tok := range strings.Split(strings.ReplaceAll(n.Raw, "、", ","), ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				names = append(names, tok)
			}
		}
	default:
		for _, c := range n.Children {
			names = append(names, linkedNames(c)...)
		}
	}
	return names
}

// filterNames drops tokens that are annotations rather than names: anything
// containing a full-width closing parenthesis or colon.
func filterNames(names []string) []string {
	kept := names[:0]
	for _, name := range names {
		if strings.Contains(name, "）") || strings.Contains(name, "：") {
			continue
		}
		kept = append(kept, name)
	}
	return kept
}
