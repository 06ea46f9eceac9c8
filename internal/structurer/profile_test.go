package structurer

import (
	"encoding/json"
	"testing"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

var studentProfileOpts = ProfileOptions{
	HeaderLabels: []string{"学生档案", "基本资料"},
	RelationKey:  "相关人物",
}

func TestExtractProfile_Basic(t *testing.T) {
	nodes := []*blocktree.Node{
		ptext("正文在表格之前"),
		table(tableBody(
			textRow("学生档案", ""), // decorative header inside the body
			textRow("姓名", "白子"),
			textRow("", "无键的行"),
			textRow("学校", "阿拜多斯高中"),
			textRow("空值字段", ""),
		)),
	}
	profile, relations := ExtractProfile(nodes, studentProfileOpts)
	if relations != nil {
		t.Errorf("expected no relations, got %v", relations)
	}
	if profile.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", profile.Len(), profile.Fields())
	}
	if v, _ := profile.Get("姓名"); v != "白子" {
		t.Errorf("姓名: got %q", v)
	}
	if v, _ := profile.Get("学校"); v != "阿拜多斯高中" {
		t.Errorf("学校: got %q", v)
	}
	if _, ok := profile.Get("空值字段"); ok {
		t.Error("field with empty value must be skipped")
	}
}

func TestExtractProfile_RelationRowFusion(t *testing.T) {
	relCell := cell(
		link("A"),
		text("、"),
		link("B"),
		link("C（注）"),
	)
	nodes := []*blocktree.Node{
		table(tableBody(
			textRow("相关人物", ""),
			row(relCell),
			textRow("萌点", "双马尾"),
		)),
	}
	profile, relations := ExtractProfile(nodes, studentProfileOpts)

	want := []string{"A", "B"}
	if len(relations) != len(want) {
		t.Fatalf("expected relations %v, got %v", want, relations)
	}
	for i := range want {
		if relations[i] != want[i] {
			t.Errorf("relations[%d]: expected %q, got %q", i, want[i], relations[i])
		}
	}
	if v, _ := profile.Get("相关人物"); v != "A,B" {
		t.Errorf("相关人物: expected joined names, got %q", v)
	}
	// The cursor skips the value row; the following normal row still lands.
	if v, _ := profile.Get("萌点"); v != "双马尾" {
		t.Errorf("萌点: got %q", v)
	}
}

func TestExtractProfile_PlainTextRelationNames(t *testing.T) {
	nodes := []*blocktree.Node{
		table(tableBody(
			textRow("相关人物", ""),
			row(textCell("甲, 乙、丙")),
		)),
	}
	_, relations := ExtractProfile(nodes, studentProfileOpts)
	want := []string{"甲", "乙", "丙"}
	if len(relations) != 3 {
		t.Fatalf("expected %v, got %v", want, relations)
	}
	for i := range want {
		if relations[i] != want[i] {
			t.Errorf("relations[%d]: expected %q, got %q", i, want[i], relations[i])
		}
	}
}

func TestExtractProfile_OnlyFirstTable(t *testing.T) {
	nodes := []*blocktree.Node{
		table(tableBody(textRow("来自第一个表", "值"))),
		table(tableBody(textRow("来自第二个表", "值"))),
	}
	profile, _ := ExtractProfile(nodes, ProfileOptions{})
	if _, ok := profile.Get("来自第二个表"); ok {
		t.Error("second table must be ignored")
	}
	if _, ok := profile.Get("来自第一个表"); !ok {
		t.Error("first table must be processed")
	}
}

func TestExtractProfile_NoTable(t *testing.T) {
	profile, relations := ExtractProfile([]*blocktree.Node{ptext("没有表格")}, studentProfileOpts)
	if profile.Len() != 0 || relations != nil {
		t.Errorf("expected empty profile, got %v / %v", profile.Fields(), relations)
	}
}

func TestProfile_OrderedJSON(t *testing.T) {
	p := &Profile{}
	p.Set("乙", "2")
	p.Set("甲", "1")
	p.Set("乙", "3") // update in place keeps position

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"乙":"3","甲":"1"}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestProfile_EmptyJSON(t *testing.T) {
	data, err := json.Marshal(&Profile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("expected {}, got %s", data)
	}
}
