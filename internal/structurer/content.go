package structurer

import (
	"encoding/json"
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

// Fragment is one unit of flattened section content: either bare text, or a
// titled sub-block collecting everything after a minor heading.
type Fragment struct {
	Title   string   // sub-block title; empty for bare text
	Text    string   // set when Title is empty
	Content []string // set when Title is non-empty
}

// IsBlock reports whether the fragment is a titled sub-block.
func (f *Fragment) IsBlock() bool { return f.Title != "" }

// MarshalJSON renders bare text as a JSON string and sub-blocks as
// {"sub_title": ..., "content": [...]} objects, the record shape consumed
// downstream.
func (f Fragment) MarshalJSON() ([]byte, error) {
	if f.Title == "" {
		return json.Marshal(f.Text)
	}
	content := f.Content
	if content == nil {
		content = []string{}
	}
	return json.Marshal(struct {
		Title   string   `json:"sub_title"`
		Content []string `json:"content"`
	}{f.Title, content})
}

// FlattenContent merges a section's nodes into an ordered sequence of bare
// text fragments and sub-blocks keyed by headings at minorLevel. A minor
// heading opens a new sub-block that absorbs subsequent leaf content; leaf
// content with no open sub-block is emitted as bare text. Headings at other
// levels are ignored; this never recurses. Use GroupByLevel when a true
// nested outline is required.
func FlattenContent(nodes []*blocktree.Node, minorLevel int) []Fragment {
	var result []Fragment
	for _, n := range nodes {
		if n.IsHeading(minorLevel) {
			result = append(result, Fragment{
				Title:   strings.TrimSpace(FlattenText(n)),
				Content: []string{},
			})
			continue
		}
		text, ok := leafText(n)
		if !ok || text == "" {
			continue
		}
		if last := len(result) - 1; last >= 0 && result[last].IsBlock() {
			result[last].Content = append(result[last].Content, text)
		} else {
			result = append(result, Fragment{Text: text})
		}
	}
	return result
}
