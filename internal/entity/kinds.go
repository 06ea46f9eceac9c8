// Package entity assembles structured sections, profiles, and quote tables
// into one record per wiki document, according to a per-kind specification.
package entity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind identifies an entity category extracted from the wiki.
type Kind string

const (
	KindStudent Kind = "student"
	KindSchool  Kind = "school"
	KindGame    Kind = "game"
)

// Spec configures how one entity kind is structured from a document.
type Spec struct {
	// Sections lists the level-MajorLevel heading titles of interest, in
	// the order their content should be assembled.
	Sections []string `yaml:"sections"`
	// FieldMap folds synonymous section titles into one canonical key.
	// Titles absent from the map are their own canonical key.
	FieldMap map[string]string `yaml:"field_map"`

	MajorLevel int `yaml:"major_level"`
	MinorLevel int `yaml:"minor_level"`
	// GroupLevel is the starting heading level for sections shaped as
	// nested outlines.
	GroupLevel int `yaml:"group_level"`
	// GroupedSections names sections shaped with the recursive level
	// grouper instead of flat sub-blocks.
	GroupedSections []string `yaml:"grouped_sections"`

	// ProfileKey is the canonical key of the infobox profile; empty
	// disables profile extraction for this kind.
	ProfileKey   string   `yaml:"profile_key"`
	HeaderLabels []string `yaml:"header_labels"`
	RelationKey  string   `yaml:"relation_key"`

	// QuotesSection is the section title holding per-version quote tables;
	// empty disables quote extraction. QuotesKey is its canonical key.
	QuotesSection string `yaml:"quotes_section"`
	QuotesKey     string `yaml:"quotes_key"`
}

// Canonical returns the canonical key for a section title.
func (s *Spec) Canonical(title string) string {
	if key, ok := s.FieldMap[title]; ok {
		return key
	}
	return title
}

// Grouped reports whether a section is shaped as a nested outline.
func (s *Spec) Grouped(title string) bool {
	for _, t := range s.GroupedSections {
		if t == title {
			return true
		}
	}
	return false
}

// CanonicalKeys returns every canonical key the assembled record must carry,
// in a stable order: section keys first, then profile and quotes.
func (s *Spec) CanonicalKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, title := range s.Sections {
		add(s.Canonical(title))
	}
	add(s.ProfileKey)
	add(s.QuotesKey)
	return keys
}

func (s *Spec) normalize() {
	if s.MajorLevel <= 0 {
		s.MajorLevel = 2
	}
	if s.MinorLevel <= 0 {
		s.MinorLevel = s.MajorLevel + 1
	}
	if s.GroupLevel <= 0 {
		s.GroupLevel = s.MajorLevel + 1
	}
	if s.QuotesKey == "" {
		s.QuotesKey = s.QuotesSection
	}
}

// DefaultSpecs returns the built-in specifications for the three wiki
// entity kinds.
func DefaultSpecs() map[Kind]Spec {
	specs := map[Kind]Spec{
		KindStudent: {
			Sections:      []string{"简介", "人物设定", "人物经历", "角色相关"},
			MinorLevel:    3,
			ProfileKey:    "学生档案",
			HeaderLabels:  []string{"学生档案", "基本资料"},
			RelationKey:   "相关人物",
			QuotesSection: "角色台词",
		},
		KindSchool: {
			Sections: []string{
				"简介", "校内设施", "学校设施",
				"社团及学生", "学生", "社团、学生与其他势力",
				"历史", "概况",
			},
			FieldMap: map[string]string{
				"学校设施":       "校内设施",
				"学生":         "学生与社团",
				"社团及学生":      "学生与社团",
				"社团、学生与其他势力": "学生与社团",
			},
			MinorLevel:   3,
			ProfileKey:   "基本资料",
			HeaderLabels: []string{"基本资料"},
		},
		KindGame: {
			Sections:        []string{"背景设定（世界观）", "游戏系统"},
			MinorLevel:      4,
			GroupLevel:      3,
			GroupedSections: []string{"游戏系统"},
		},
	}
	for k, s := range specs {
		s.normalize()
		specs[k] = s
	}
	return specs
}

// LoadSpecs returns the default specs overridden by the YAML file at path.
// An empty path returns the defaults unchanged. The file maps kind names to
// complete Spec values; kinds absent from the file keep their defaults.
func LoadSpecs(path string) (map[Kind]Spec, error) {
	specs := DefaultSpecs()
	if path == "" {
		return specs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kind specs: %w", err)
	}
	var overrides map[Kind]Spec
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse kind specs: %w", err)
	}
	for kind, s := range overrides {
		s.normalize()
		specs[kind] = s
	}
	return specs, nil
}
