package projection

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"quire/internal/model"
	"quire/internal/store"
)

func seqIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("n%d", n), nil
	}
}

func mustCreate(t *testing.T, db *store.DB, typ model.NodeType, parent string) string {
	t.Helper()
	id, err := db.Create(typ, parent, "")
	if err != nil {
		t.Fatalf("Create(%s, %q): %v", typ, parent, err)
	}
	return id
}

func mustRename(t *testing.T, db *store.DB, id, title string) {
	t.Helper()
	if err := db.Rename(id, title); err != nil {
		t.Fatalf("Rename(%s): %v", id, err)
	}
}

// H1 > [SH1 > [T1], T2, SH2]
func outlineFixture(t *testing.T) (db *store.DB, h1, sh1, t1, t2, sh2 string) {
	t.Helper()
	db = store.New(store.WithIDFunc(seqIDs()))
	h1 = mustCreate(t, db, model.NodeHeading, "")
	sh1 = mustCreate(t, db, model.NodeSubheading, h1)
	t1 = mustCreate(t, db, model.NodeText, sh1)
	t2 = mustCreate(t, db, model.NodeText, h1)
	sh2 = mustCreate(t, db, model.NodeSubheading, h1)
	mustRename(t, db, h1, "H1")
	mustRename(t, db, sh1, "SH1")
	mustRename(t, db, sh2, "SH2")
	return db, h1, sh1, t1, t2, sh2
}

func TestOutline_SkipsLeavesButKeepsScanning(t *testing.T) {
	db, h1, sh1, _, _, sh2 := outlineFixture(t)

	got, err := Outline(db, h1)
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	want := []Bookmark{{
		ID:    h1,
		Title: "H1",
		Depth: 0,
		Children: []Bookmark{
			{ID: sh1, Title: "SH1", Depth: 1, Children: []Bookmark{}},
			{ID: sh2, Title: "SH2", Depth: 1, Children: []Bookmark{}},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}

	again, _ := Outline(db, h1)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("outline not deterministic (-first +second):\n%s", diff)
	}
}

func TestOutline_UntitledAndWholeDocument(t *testing.T) {
	db, h1, _, _, _, _ := outlineFixture(t)
	h2 := mustCreate(t, db, model.NodeHeading, "")
	if err := db.SetContent(h2, model.Title("  ")); err != nil {
		t.Fatalf("SetContent: %v", err)
	}

	got, err := Outline(db, "")
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if len(got) != 2 || got[0].ID != h1 || got[1].Title != "Untitled" {
		t.Fatalf("unexpected document outline: %+v", got)
	}

	flat := FlattenBookmarks(got)
	var titles []string
	for _, b := range flat {
		titles = append(titles, fmt.Sprintf("%d:%s", b.Depth, b.Title))
	}
	if diff := cmp.Diff([]string{"0:H1", "1:SH1", "1:SH2", "0:Untitled"}, titles); diff != "" {
		t.Fatalf("flat bookmarks mismatch (-want +got):\n%s", diff)
	}

	if _, err := Outline(db, "ghost"); err == nil {
		t.Fatalf("expected NotFoundError for unknown root")
	}
}

func TestBuildView_MirrorsTree(t *testing.T) {
	db, h1, sh1, t1, t2, sh2 := outlineFixture(t)

	v, err := BuildView(db, h1)
	if err != nil {
		t.Fatalf("BuildView: %v", err)
	}
	type shape struct {
		ID    string
		Depth int
		Kids  int
	}
	var got []shape
	stack := []View{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		got = append(got, shape{cur.ID, cur.Depth, len(cur.Children)})
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	want := []shape{{h1, 0, 3}, {sh1, 1, 1}, {t1, 2, 0}, {t2, 1, 0}, {sh2, 1, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("view shape mismatch (-want +got):\n%s", diff)
	}
	if v.Title() != "H1" || v.Children[1].Title() != "" {
		t.Fatalf("unexpected titles: %q %q", v.Title(), v.Children[1].Title())
	}

	forest := BuildForest(db)
	if len(forest) != 1 || forest[0].ID != h1 {
		t.Fatalf("forest: %+v", forest)
	}
}

func TestFlatten_CollapseAndPinned(t *testing.T) {
	db, h1, sh1, t1, t2, sh2 := outlineFixture(t)
	h2 := mustCreate(t, db, model.NodeHeading, "")

	ids := func(rows []Row) []string {
		var out []string
		for _, r := range rows {
			out = append(out, fmt.Sprintf("%s@%d", r.Node.ID, r.Depth))
		}
		return out
	}

	want := []string{h1 + "@0", sh1 + "@1", t1 + "@2", t2 + "@1", sh2 + "@1", h2 + "@0"}
	if diff := cmp.Diff(want, ids(Flatten(db))); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	if err := db.ToggleCollapse(sh1); err != nil {
		t.Fatalf("ToggleCollapse: %v", err)
	}
	rows := Flatten(db)
	want = []string{h1 + "@0", sh1 + "@1", t2 + "@1", sh2 + "@1", h2 + "@0"}
	if diff := cmp.Diff(want, ids(rows)); diff != "" {
		t.Fatalf("collapsed rows mismatch (-want +got):\n%s", diff)
	}
	if r := rows[IndexOf(rows, sh1)]; !r.Collapsed || !r.HasChildren {
		t.Fatalf("expected sh1 row collapsed with children: %+v", r)
	}

	if err := db.TogglePin(h2); err != nil {
		t.Fatalf("TogglePin: %v", err)
	}
	if err := db.TogglePin(t1); err != nil {
		t.Fatalf("TogglePin: %v", err)
	}
	mainRows := ids(Flatten(db))
	for _, id := range mainRows {
		if id == h2+"@0" {
			t.Fatalf("pinned root should leave the main list: %v", mainRows)
		}
	}
	if diff := cmp.Diff([]string{t1 + "@0", h2 + "@0"}, ids(Pinned(db, db.Pinned()))); diff != "" {
		t.Fatalf("pinned rows mismatch (-want +got):\n%s", diff)
	}

	// Linear ignores collapse.
	if diff := cmp.Diff([]string{h1, sh1, t1, t2, sh2, h2}, Linear(db)); diff != "" {
		t.Fatalf("linear mismatch (-want +got):\n%s", diff)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		node model.Node
		want string
	}{
		{model.Node{Type: model.NodeHeading, Content: model.Title(" Intro ")}, "Intro"},
		{model.Node{Type: model.NodeHeading, Content: model.Title("")}, "New heading"},
		{model.Node{Type: model.NodeText, Content: model.RichText("<p>Hello <b>world</b></p><p>again &amp; more</p>")}, "Hello world again & more"},
		{model.Node{Type: model.NodeText, Content: model.RichText("<p></p>")}, "New text"},
		{model.Node{Type: model.NodeTable, Content: model.DefaultContent(model.NodeTable)}, "Table"},
		{model.Node{Type: model.NodeBanner, Content: model.DefaultContent(model.NodeBanner)}, "Banner"},
		{model.Node{Type: model.NodeImage}, "New image"},
	}
	for _, tt := range tests {
		if got := Label(tt.node); got != tt.want {
			t.Fatalf("Label(%+v)=%q, want %q", tt.node, got, tt.want)
		}
	}
}

func TestDigest_StableAndContentSensitive(t *testing.T) {
	db, h1, _, t1, _, _ := outlineFixture(t)

	v1, _ := BuildView(db, h1)
	v2, _ := BuildView(db, h1)
	d1, err := Digest(v1)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	d2, _ := Digest(v2)
	if d1 != d2 || len(d1) != 64 {
		t.Fatalf("digest not stable: %s vs %s", d1, d2)
	}

	if err := db.SetContent(t1, model.RichText("<p>changed</p>")); err != nil {
		t.Fatalf("SetContent: %v", err)
	}
	v3, _ := BuildView(db, h1)
	if d3, _ := Digest(v3); d3 == d1 {
		t.Fatalf("digest ignored a content change")
	}
}
