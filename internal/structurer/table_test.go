package structurer

import "testing"

func TestTableText(t *testing.T) {
	tbl := table(
		tableHead(textRow("场合", "台词")),
		tableBody(
			textRow("日常", "  你好  "),
			textRow("战斗", "冲啊"),
		),
	)
	want := "| 场合 | 台词 |\n| 日常 | 你好 |\n| 战斗 | 冲啊 |"
	if got := TableText(tbl); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTableText_EmptyTable(t *testing.T) {
	if got := TableText(table()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestQuoteEntries(t *testing.T) {
	tbl := table(
		tableHead(textRow("场合", "台词")),
		tableBody(
			textRow("场合", "台词"), // header repeated inside the body
			textRow("", ""),       // fully blank
			textRow("日常", "你好"),
			textRow("羁绊"), // fewer than two cells
			textRow("战斗", "冲啊", "备注"),
		),
	)
	entries := QuoteEntries(tbl)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), entries)
	}
	if entries[0].Occasion != "日常" || entries[0].Line != "你好" {
		t.Errorf("entry 0: got %+v", entries[0])
	}
	if entries[1].Occasion != "战斗" || entries[1].Line != "冲啊" {
		t.Errorf("entry 1: got %+v", entries[1])
	}
}

func TestQuoteEntries_OccasionMatchingSecondHeaderKept(t *testing.T) {
	// Only the first-column header is a skip sentinel; an occasion that
	// happens to equal another column's header is a real row.
	tbl := table(
		tableHead(textRow("场合", "台词")),
		tableBody(
			textRow("台词", "这句话要保留"),
			textRow("场合", "这行是重复表头"),
		),
	)
	entries := QuoteEntries(tbl)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %v", len(entries), entries)
	}
	if entries[0].Occasion != "台词" || entries[0].Line != "这句话要保留" {
		t.Errorf("entry 0: got %+v", entries[0])
	}
}

func TestQuoteEntries_HeadlessTableStillSkipsSentinel(t *testing.T) {
	tbl := table(tableBody(
		textRow("场合", "台词"),
		textRow("日常", "早上好"),
	))
	entries := QuoteEntries(tbl)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Occasion != "日常" {
		t.Errorf("expected 日常, got %q", entries[0].Occasion)
	}
}
