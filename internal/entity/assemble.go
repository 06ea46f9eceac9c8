package entity

import (
	"strings"

	"github.com/dgallion1/wikistruct/internal/blocktree"
	"github.com/dgallion1/wikistruct/internal/structurer"
)

// Record is one assembled entity document, keyed by canonical field name.
// Values are []structurer.Fragment, []structurer.Section, *structurer.Profile,
// or map[string][]structurer.QuoteEntry.
type Record map[string]any

// Result carries the assembled record plus the relation names pulled from
// the profile's two-row relation field. Relation names are unresolved text
// labels, not references.
type Result struct {
	Record    Record
	Relations []string
}

// Assemble structures one parsed document into an entity record. Sections of
// interest are segmented at the major level and shaped either as flat
// sub-block sequences or as nested outlines; the infobox profile and the
// versioned quote tables are extracted independently over the whole
// document. Sections folding to the same canonical key are concatenated in
// spec order. Every canonical key is always present: absent sections default
// to an empty list, an absent profile to an empty map, absent quotes to an
// empty version map.
func Assemble(spec Spec, nodes []*blocktree.Node) Result {
	want := make(map[string]bool, len(spec.Sections)+1)
	for _, title := range spec.Sections {
		want[title] = true
	}
	if spec.QuotesSection != "" {
		want[spec.QuotesSection] = true
	}
	sections := structurer.Segment(nodes, want, structurer.SegmentOptions{MajorLevel: spec.MajorLevel})

	rec := Record{}
	for _, title := range spec.Sections {
		content, ok := sections[title]
		if !ok {
			continue
		}
		key := spec.Canonical(title)
		if spec.Grouped(title) {
			grouped := structurer.GroupByLevel(content, spec.GroupLevel)
			if prev, ok := rec[key].([]structurer.Section); ok {
				rec[key] = append(prev, grouped...)
			} else {
				rec[key] = grouped
			}
			continue
		}
		flat := structurer.FlattenContent(content, spec.MinorLevel)
		if prev, ok := rec[key].([]structurer.Fragment); ok {
			rec[key] = append(prev, flat...)
		} else {
			rec[key] = flat
		}
	}

	var relations []string
	if spec.ProfileKey != "" {
		profile, rels := structurer.ExtractProfile(nodes, structurer.ProfileOptions{
			HeaderLabels: spec.HeaderLabels,
			RelationKey:  spec.RelationKey,
		})
		rec[spec.ProfileKey] = profile
		relations = rels
	}

	if spec.QuotesSection != "" {
		rec[spec.QuotesKey] = quotesByVersion(sections[spec.QuotesSection], spec.MinorLevel)
	}

	for _, key := range spec.CanonicalKeys() {
		if _, ok := rec[key]; ok {
			continue
		}
		switch key {
		case spec.ProfileKey:
			rec[key] = &structurer.Profile{}
		case spec.QuotesKey:
			rec[key] = map[string][]structurer.QuoteEntry{}
		default:
			rec[key] = []structurer.Fragment{}
		}
	}

	return Result{Record: rec, Relations: relations}
}

// quotesByVersion reads a quotes section: each minor heading names a game
// version, and the tables under it contribute that version's lines. A
// version heading with no table keeps its empty list: the version exists,
// it just has nothing recorded yet.
func quotesByVersion(nodes []*blocktree.Node, minorLevel int) map[string][]structurer.QuoteEntry {
	quotes := make(map[string][]structurer.QuoteEntry)
	version := ""
	for _, n := range nodes {
		switch {
		case n.IsHeading(minorLevel):
			version = strings.TrimSpace(structurer.FlattenText(n))
			if _, ok := quotes[version]; !ok {
				quotes[version] = []structurer.QuoteEntry{}
			}
		case n.Kind == blocktree.Table && version != "":
			quotes[version] = append(quotes[version], structurer.QuoteEntries(n)...)
		}
	}
	return quotes
}
