package entity

import (
	"testing"

	"github.com/dgallion1/wikistruct/internal/blocktree"
	"github.com/dgallion1/wikistruct/internal/structurer"
)

func text(raw string) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.Text, Raw: raw}
}

func heading(level int, title string) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.Heading, Level: level, Children: []*blocktree.Node{text(title)}}
}

func ptext(raw string) *blocktree.Node {
	return &blocktree.Node{Kind: blocktree.Paragraph, Children: []*blocktree.Node{text(raw)}}
}

func quoteTable(rows ...[2]string) *blocktree.Node {
	body := &blocktree.Node{Kind: blocktree.TableBody}
	for _, r := range rows {
		body.Children = append(body.Children, &blocktree.Node{
			Kind: blocktree.TableRow,
			Children: []*blocktree.Node{
				{Kind: blocktree.TableCell, Children: []*blocktree.Node{text(r[0])}},
				{Kind: blocktree.TableCell, Children: []*blocktree.Node{text(r[1])}},
			},
		})
	}
	return &blocktree.Node{Kind: blocktree.Table, Children: []*blocktree.Node{body}}
}

func studentSpec(t *testing.T) Spec {
	t.Helper()
	return DefaultSpecs()[KindStudent]
}

func TestAssemble_EmptyDocumentHasAllCanonicalKeys(t *testing.T) {
	spec := studentSpec(t)
	res := Assemble(spec, nil)

	for _, key := range spec.CanonicalKeys() {
		v, ok := res.Record[key]
		if !ok {
			t.Errorf("canonical key %q absent", key)
			continue
		}
		switch key {
		case spec.ProfileKey:
			p, ok := v.(*structurer.Profile)
			if !ok || p.Len() != 0 {
				t.Errorf("%q: expected empty profile, got %#v", key, v)
			}
		case spec.QuotesKey:
			q, ok := v.(map[string][]structurer.QuoteEntry)
			if !ok || len(q) != 0 {
				t.Errorf("%q: expected empty quotes map, got %#v", key, v)
			}
		default:
			f, ok := v.([]structurer.Fragment)
			if !ok || len(f) != 0 {
				t.Errorf("%q: expected empty fragment list, got %#v", key, v)
			}
		}
	}
}

func TestAssemble_StudentSectionsAndQuotes(t *testing.T) {
	spec := studentSpec(t)
	nodes := []*blocktree.Node{
		heading(2, "简介"),
		ptext("她是阿拜多斯的学生。"),
		heading(2, "角色台词"),
		heading(3, "日版"),
		quoteTable([2]string{"日常", "你好"}, [2]string{"战斗", "冲啊"}),
		heading(3, "国际服"),
		heading(2, "无关章节"),
		ptext("被忽略"),
	}
	res := Assemble(spec, nodes)

	intro, ok := res.Record["简介"].([]structurer.Fragment)
	if !ok || len(intro) != 1 {
		t.Fatalf("简介: got %#v", res.Record["简介"])
	}
	if intro[0].Text != "她是阿拜多斯的学生。" {
		t.Errorf("简介 text: got %q", intro[0].Text)
	}

	quotes, ok := res.Record[spec.QuotesKey].(map[string][]structurer.QuoteEntry)
	if !ok {
		t.Fatalf("quotes: got %#v", res.Record[spec.QuotesKey])
	}
	if len(quotes["日版"]) != 2 {
		t.Errorf("日版: expected 2 entries, got %v", quotes["日版"])
	}
	if entries, ok := quotes["国际服"]; !ok || len(entries) != 0 {
		t.Errorf("国际服: expected present with empty list, got %v, present=%v", entries, ok)
	}
	if quotes["日版"][0].Occasion != "日常" || quotes["日版"][0].Line != "你好" {
		t.Errorf("日版[0]: got %+v", quotes["日版"][0])
	}
}

func TestAssemble_SchoolSynonymsMerge(t *testing.T) {
	spec := DefaultSpecs()[KindSchool]
	nodes := []*blocktree.Node{
		heading(2, "学生"),
		ptext("学生名单"),
		heading(2, "社团及学生"),
		ptext("社团名单"),
	}
	res := Assemble(spec, nodes)

	merged, ok := res.Record["学生与社团"].([]structurer.Fragment)
	if !ok {
		t.Fatalf("学生与社团: got %#v", res.Record["学生与社团"])
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged fragments, got %d: %v", len(merged), merged)
	}
	// Merge order follows the spec's section list, not document order.
	if merged[0].Text != "社团名单" || merged[1].Text != "学生名单" {
		t.Errorf("expected spec-order merge, got %v", merged)
	}
	if _, ok := res.Record["学生"]; ok {
		t.Error("synonym title must not appear as its own key")
	}
}

func TestAssemble_GameGroupedSection(t *testing.T) {
	spec := DefaultSpecs()[KindGame]
	nodes := []*blocktree.Node{
		heading(2, "游戏系统"),
		heading(3, "战斗"),
		ptext("回合制"),
		heading(4, "技能"),
		ptext("消耗费用"),
		heading(2, "背景设定（世界观）"),
		ptext("基沃托斯"),
	}
	res := Assemble(spec, nodes)

	system, ok := res.Record["游戏系统"].([]structurer.Section)
	if !ok {
		t.Fatalf("游戏系统: got %#v", res.Record["游戏系统"])
	}
	if len(system) != 1 || system[0].Title != "战斗" {
		t.Fatalf("expected one 战斗 section, got %v", system)
	}
	if len(system[0].Subsections) != 1 || system[0].Subsections[0].Title != "技能" {
		t.Errorf("expected nested 技能 subsection, got %v", system[0].Subsections)
	}

	world, ok := res.Record["背景设定（世界观）"].([]structurer.Fragment)
	if !ok || len(world) != 1 {
		t.Fatalf("背景设定: got %#v", res.Record["背景设定（世界观）"])
	}
}

func TestAssemble_ProfileAndRelations(t *testing.T) {
	spec := studentSpec(t)
	relRow := &blocktree.Node{
		Kind: blocktree.TableRow,
		Children: []*blocktree.Node{{
			Kind: blocktree.TableCell,
			Children: []*blocktree.Node{
				{Kind: blocktree.Link, Children: []*blocktree.Node{text("阿露")}},
				{Kind: blocktree.Link, Children: []*blocktree.Node{text("老师")}},
			},
		}},
	}
	infobox := &blocktree.Node{
		Kind: blocktree.Table,
		Children: []*blocktree.Node{{
			Kind: blocktree.TableBody,
			Children: []*blocktree.Node{
				quoteTable([2]string{"姓名", "白子"}).Children[0].Children[0],
				quoteTable([2]string{"相关人物", ""}).Children[0].Children[0],
				relRow,
			},
		}},
	}
	res := Assemble(spec, []*blocktree.Node{infobox})

	profile, ok := res.Record[spec.ProfileKey].(*structurer.Profile)
	if !ok {
		t.Fatalf("profile: got %#v", res.Record[spec.ProfileKey])
	}
	if v, _ := profile.Get("姓名"); v != "白子" {
		t.Errorf("姓名: got %q", v)
	}
	if v, _ := profile.Get("相关人物"); v != "阿露,老师" {
		t.Errorf("相关人物: got %q", v)
	}
	if len(res.Relations) != 2 || res.Relations[0] != "阿露" || res.Relations[1] != "老师" {
		t.Errorf("relations: got %v", res.Relations)
	}
}
