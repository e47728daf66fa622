package tui

import (
	"strings"
	"testing"

	"github.com/dockerlens/dockerlens/pkg/models"
)

func sampleForest() []models.FileNode {
	return []models.FileNode{
		{
			Name: "/",
			Kind: models.KindDirectory,
			Children: []models.FileNode{
				{Name: "bin", Kind: models.KindDirectory, Children: nil},
				{Name: "init", Kind: models.KindFile, SizeBytes: 1024},
			},
		},
	}
}

func rowNames(rows []treeRow) []string {
	names := make([]string, len(rows))
	for i, row := range rows {
		if row.placeholder {
			names[i] = "<placeholder>"
			continue
		}
		names[i] = row.node.Name
	}
	return names
}

// pathOf returns the expansion key of the visible row at index i.
func pathOf(t *testing.T, tree *treeView, i int) string {
	t.Helper()
	rows := tree.visibleRows()
	if i >= len(rows) {
		t.Fatalf("no visible row %d, have %v", i, rowNames(rows))
	}
	return rows[i].path
}

func TestForestStartsCollapsed(t *testing.T) {
	tree := newTreeView(sampleForest())

	rows := tree.visibleRows()
	if len(rows) != 1 {
		t.Fatalf("collapsed forest should show only top-level rows, got %v", rowNames(rows))
	}
	if rows[0].node.Name != "/" {
		t.Errorf("unexpected root row %q", rows[0].node.Name)
	}
}

func TestExpandRevealsDirectChildrenOnly(t *testing.T) {
	tree := newTreeView(sampleForest())
	tree.toggle(pathOf(t, tree, 0))

	rows := tree.visibleRows()
	if len(rows) != 3 {
		t.Fatalf("expanding / should reveal exactly two child rows, got %v", rowNames(rows))
	}
	if rows[1].node.Name != "bin" || !rows[1].node.IsDir() {
		t.Errorf("first child should be the bin directory, got %+v", rows[1])
	}
	if rows[2].node.Name != "init" || rows[2].node.IsDir() {
		t.Errorf("second child should be the init file, got %+v", rows[2])
	}
	if rows[1].depth != 1 || rows[2].depth != 1 {
		t.Error("children should render at depth+1")
	}
}

func TestUnexploredDirectoryShowsPlaceholder(t *testing.T) {
	tree := newTreeView(sampleForest())
	tree.toggle(pathOf(t, tree, 0))
	tree.toggle(pathOf(t, tree, 1)) // bin

	rows := tree.visibleRows()
	if len(rows) != 4 {
		t.Fatalf("expanding unexplored bin should add exactly one placeholder row, got %v", rowNames(rows))
	}
	placeholder := rows[2]
	if !placeholder.placeholder {
		t.Fatalf("row under bin should be a placeholder, got %+v", placeholder)
	}
	if placeholder.depth != 2 {
		t.Errorf("placeholder should render one level below its directory, got depth %d", placeholder.depth)
	}

	if !strings.Contains(tree.render(), unexploredMarker) {
		t.Error("rendered output should carry the unexplored marker")
	}
}

func TestEmptyDirectoryShowsNothingExtra(t *testing.T) {
	forest := []models.FileNode{
		{Name: "empty", Kind: models.KindDirectory, Children: []models.FileNode{}},
	}
	tree := newTreeView(forest)
	tree.toggle(pathOf(t, tree, 0))

	rows := tree.visibleRows()
	if len(rows) != 1 {
		t.Fatalf("explored empty directory should add no rows, got %v", rowNames(rows))
	}
	if strings.Contains(tree.render(), unexploredMarker) {
		t.Error("explored empty directory must not show the unexplored placeholder")
	}
}

func TestNilAndEmptyChildrenRenderDifferently(t *testing.T) {
	unexplored := newTreeView([]models.FileNode{{Name: "d", Kind: models.KindDirectory, Children: nil}})
	explored := newTreeView([]models.FileNode{{Name: "d", Kind: models.KindDirectory, Children: []models.FileNode{}}})
	unexplored.toggle(pathOf(t, unexplored, 0))
	explored.toggle(pathOf(t, explored, 0))

	if unexplored.render() == explored.render() {
		t.Error("nil children and empty children must render distinguishably")
	}
}

func TestToggleIsIsolatedAndIdempotentInPairs(t *testing.T) {
	forest := []models.FileNode{
		{Name: "a", Kind: models.KindDirectory, Children: []models.FileNode{}},
		{Name: "b", Kind: models.KindDirectory, Children: []models.FileNode{}},
	}
	tree := newTreeView(forest)
	pathA := pathOf(t, tree, 0)
	pathB := pathOf(t, tree, 1)

	tree.toggle(pathA)
	if !tree.expanded[pathA] {
		t.Error("toggle should expand a")
	}
	if tree.expanded[pathB] {
		t.Error("toggling a must not touch its sibling")
	}

	tree.toggle(pathA)
	if tree.expanded[pathA] {
		t.Error("double toggle should restore the original state")
	}
	if tree.expanded[pathB] {
		t.Error("sibling state should survive unrelated toggles")
	}
}

func TestSameNameSiblingsToggleIndependently(t *testing.T) {
	// Two sibling directories with identical names must not share an
	// expansion flag.
	forest := []models.FileNode{
		{
			Name: "/",
			Kind: models.KindDirectory,
			Children: []models.FileNode{
				{Name: "data", Kind: models.KindDirectory, Children: []models.FileNode{{Name: "one", Kind: models.KindFile, SizeBytes: 1}}},
				{Name: "data", Kind: models.KindDirectory, Children: []models.FileNode{{Name: "two", Kind: models.KindFile, SizeBytes: 2}}},
			},
		},
	}
	tree := newTreeView(forest)
	tree.toggle(pathOf(t, tree, 0))

	first := pathOf(t, tree, 1)
	second := pathOf(t, tree, 2)
	if first == second {
		t.Fatalf("same-named siblings must have distinct expansion keys, both %q", first)
	}

	tree.toggle(first)
	rows := tree.visibleRows()
	if len(rows) != 4 {
		t.Fatalf("expanding the first data dir should reveal only its own child, got %v", rowNames(rows))
	}
	if rows[2].node.Name != "one" {
		t.Errorf("expected child of the first data dir, got %q", rows[2].node.Name)
	}
	if tree.expanded[second] {
		t.Error("expanding one sibling must not expand its namesake")
	}
}

func TestToggleAtCursorSkipsFilesAndPlaceholders(t *testing.T) {
	tree := newTreeView(sampleForest())
	tree.toggle(pathOf(t, tree, 0))
	binPath := pathOf(t, tree, 1)

	tree.cursor = 2 // the init file
	tree.toggleAtCursor()
	if len(tree.expanded) != 1 {
		t.Error("files must not gain expansion state")
	}

	tree.cursor = 1 // bin
	tree.toggleAtCursor()
	if !tree.expanded[binPath] {
		t.Error("cursor toggle should expand the directory under the cursor")
	}

	tree.cursor = 2 // now the placeholder row
	tree.toggleAtCursor()
	if !tree.expanded[binPath] {
		t.Error("toggling a placeholder row must be a no-op")
	}
}

func TestMoveCursorClampsToVisibleRows(t *testing.T) {
	tree := newTreeView(sampleForest())

	tree.moveCursor(5)
	if tree.cursor != 0 {
		t.Errorf("cursor should clamp to the last visible row, got %d", tree.cursor)
	}

	tree.toggle(pathOf(t, tree, 0))
	tree.moveCursor(10)
	if tree.cursor != 2 {
		t.Errorf("cursor should clamp to row 2, got %d", tree.cursor)
	}
	tree.moveCursor(-10)
	if tree.cursor != 0 {
		t.Errorf("cursor should clamp to row 0, got %d", tree.cursor)
	}
}

func TestRenderShowsFileSizes(t *testing.T) {
	tree := newTreeView(sampleForest())
	tree.toggle(pathOf(t, tree, 0))

	out := tree.render()
	if !strings.Contains(out, "1.0 KB") {
		t.Errorf("init should render its size as 1.0 KB, got:\n%s", out)
	}
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tc := range cases {
		if got := humanSize(tc.in); got != tc.want {
			t.Errorf("humanSize(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
