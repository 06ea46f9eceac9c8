package structurer

import (
	"encoding/json"
	"testing"

	"github.com/dgallion1/wikistruct/internal/blocktree"
)

func TestFlattenContent_SubBlocks(t *testing.T) {
	nodes := []*blocktree.Node{
		ptext("开头的散文"),
		heading(3, "外貌"),
		ptext("银发"),
		table(tableBody(textRow("身高", "158cm"))),
		heading(3, "性格"),
		ptext("温柔"),
	}
	frags := FlattenContent(nodes, 3)
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d: %v", len(frags), frags)
	}

	if frags[0].IsBlock() || frags[0].Text != "开头的散文" {
		t.Errorf("fragment 0 should be bare text, got %+v", frags[0])
	}

	if frags[1].Title != "外貌" {
		t.Errorf("expected sub-block 外貌, got %+v", frags[1])
	}
	wantContent := []string{"银发", "| 身高 | 158cm |"}
	if len(frags[1].Content) != 2 {
		t.Fatalf("外貌 content: got %v", frags[1].Content)
	}
	for i := range wantContent {
		if frags[1].Content[i] != wantContent[i] {
			t.Errorf("外貌 content[%d]: expected %q, got %q", i, wantContent[i], frags[1].Content[i])
		}
	}

	if frags[2].Title != "性格" || len(frags[2].Content) != 1 {
		t.Errorf("fragment 2: got %+v", frags[2])
	}
}

func TestFlattenContent_IgnoresOtherHeadingLevels(t *testing.T) {
	nodes := []*blocktree.Node{
		heading(4, "四级标题被忽略"),
		ptext("段落"),
	}
	frags := FlattenContent(nodes, 3)
	if len(frags) != 1 || frags[0].IsBlock() {
		t.Fatalf("expected a single bare fragment, got %v", frags)
	}
	if frags[0].Text != "段落" {
		t.Errorf("expected 段落, got %q", frags[0].Text)
	}
}

func TestFlattenContent_EmptyLeavesSkipped(t *testing.T) {
	nodes := []*blocktree.Node{
		heading(3, "空章节"),
		ptext("   "),
	}
	frags := FlattenContent(nodes, 3)
	if len(frags) != 1 {
		t.Fatalf("expected only the sub-block, got %v", frags)
	}
	if len(frags[0].Content) != 0 {
		t.Errorf("blank paragraph must not be appended, got %v", frags[0].Content)
	}
}

func TestFragment_MarshalJSON(t *testing.T) {
	frags := []Fragment{
		{Text: "纯文本"},
		{Title: "子块", Content: []string{"内容一"}},
		{Title: "空子块"},
	}
	data, err := json.Marshal(frags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `["纯文本",{"sub_title":"子块","content":["内容一"]},{"sub_title":"空子块","content":[]}]`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}
