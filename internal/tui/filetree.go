package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dockerlens/dockerlens/pkg/models"
)

// treeView renders a FileNode forest with per-directory expansion. The
// forest is an immutable snapshot; expansion flags live in a side map so UI
// state never leaks into the data. Keys are slash-joined index:name
// segments, which stay unique even when siblings share a name. Every
// directory starts collapsed.
type treeView struct {
	forest   []models.FileNode
	expanded map[string]bool
	cursor   int
}

// treeRow is one visible line of the tree. placeholder rows mark a
// directory the server did not explore (nil children); they carry no node.
type treeRow struct {
	path        string
	depth       int
	node        *models.FileNode
	placeholder bool
}

// newTreeView wraps a freshly fetched forest. A new listing response always
// gets a new treeView; expansion state is not carried across snapshots.
func newTreeView(forest []models.FileNode) *treeView {
	return &treeView{
		forest:   forest,
		expanded: make(map[string]bool),
	}
}

// visibleRows flattens the forest into the rows currently on screen.
// Collapsed subtrees are not visited, so cost tracks what the user has
// opened rather than the size of the forest. An expanded directory with nil
// children contributes a single placeholder row; one with empty children
// contributes nothing extra.
func (t *treeView) visibleRows() []treeRow {
	var rows []treeRow
	for i := range t.forest {
		rows = t.appendRows(rows, &t.forest[i], fmt.Sprintf("%d:%s", i, t.forest[i].Name), 0)
	}
	return rows
}

func (t *treeView) appendRows(rows []treeRow, node *models.FileNode, path string, depth int) []treeRow {
	rows = append(rows, treeRow{path: path, depth: depth, node: node})
	if !node.IsDir() || !t.expanded[path] {
		return rows
	}
	if !node.Explored() {
		rows = append(rows, treeRow{path: path + "/…", depth: depth + 1, placeholder: true})
		return rows
	}
	for i := range node.Children {
		child := &node.Children[i]
		rows = t.appendRows(rows, child, fmt.Sprintf("%s/%d:%s", path, i, child.Name), depth+1)
	}
	return rows
}

// toggle flips the expansion flag of the directory at path. Siblings,
// ancestors, and descendants keep their own flags; toggling twice restores
// the original state.
func (t *treeView) toggle(path string) {
	t.expanded[path] = !t.expanded[path]
}

// toggleAtCursor toggles the directory under the cursor. Files and
// placeholder rows are left alone.
func (t *treeView) toggleAtCursor() {
	rows := t.visibleRows()
	if t.cursor < 0 || t.cursor >= len(rows) {
		return
	}
	row := rows[t.cursor]
	if row.placeholder || !row.node.IsDir() {
		return
	}
	t.toggle(row.path)
}

// moveCursor shifts the cursor by delta, clamped to the visible rows.
func (t *treeView) moveCursor(delta int) {
	rows := t.visibleRows()
	if len(rows) == 0 {
		t.cursor = 0
		return
	}
	t.cursor += delta
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor >= len(rows) {
		t.cursor = len(rows) - 1
	}
}

var (
	treeDirStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	treeFileStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	treeSizeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	treeCursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	treePlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

// unexploredMarker is the terminal row shown under an expanded directory
// the server returned without children.
const unexploredMarker = "… not explored"

// render draws the visible rows.
func (t *treeView) render() string {
	rows := t.visibleRows()
	if len(rows) == 0 {
		return treePlaceholderStyle.Render("(empty listing)")
	}

	var s strings.Builder
	for i, row := range rows {
		cursor := "  "
		if i == t.cursor {
			cursor = treeCursorStyle.Render("> ")
		}
		indent := strings.Repeat("  ", row.depth)

		var line string
		switch {
		case row.placeholder:
			line = treePlaceholderStyle.Render(unexploredMarker)
		case row.node.IsDir():
			marker := "▸"
			if t.expanded[row.path] {
				marker = "▾"
			}
			line = treeDirStyle.Render(fmt.Sprintf("%s %s/", marker, row.node.Name))
		default:
			line = treeFileStyle.Render(row.node.Name) +
				treeSizeStyle.Render(fmt.Sprintf("  %s", humanSize(row.node.SizeBytes)))
		}

		s.WriteString(cursor + indent + line + "\n")
	}
	return s.String()
}

// humanSize formats a byte count for display, e.g. 1024 -> "1.0 KB".
func humanSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
