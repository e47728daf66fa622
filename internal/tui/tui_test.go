package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/dockerlens/dockerlens/internal/session"
	"github.com/dockerlens/dockerlens/pkg/models"
)

func testAnalysis(ref string) *models.AnalysisResult {
	return &models.AnalysisResult{
		Image:           ref,
		Metadata:        models.ImageMetadata{ImageID: "sha256:abc", OS: "linux", Architecture: "amd64"},
		Recommendations: "use a non-root user",
	}
}

// readyModel returns a model whose session has a primary result for ref.
func readyModel(t *testing.T, ref string) model {
	t.Helper()
	m := initialModel(context.Background(), nil)
	if !m.sess.StartAnalysis(ref) {
		t.Fatalf("StartAnalysis(%q) rejected", ref)
	}
	updated, _ := m.Update(AnalysisCompletedMsg{ImageRef: ref, Result: testAnalysis(ref)})
	m = updated.(model)
	if !m.sess.Ready() {
		t.Fatal("session should be ready after analysis completion")
	}
	return m
}

// TestModelInitialization tests the initial model setup
func TestModelInitialization(t *testing.T) {
	m := initialModel(context.Background(), nil)

	if m.sess == nil {
		t.Fatal("session controller should be initialized")
	}
	if m.sess.Ready() {
		t.Error("session should start without a result")
	}
	if m.currentSection != sectionOverview {
		t.Error("initial section should be overview")
	}
	if m.spinner == nil {
		t.Error("spinner should be initialized")
	}
}

// TestAnalysisCompletionUnlocksSession tests primary completion handling
func TestAnalysisCompletionUnlocksSession(t *testing.T) {
	m := readyModel(t, "nginx:latest")

	if m.sess.PrimaryResult().Image != "nginx:latest" {
		t.Errorf("unexpected primary result %q", m.sess.PrimaryResult().Image)
	}
	if m.currentSection != sectionOverview {
		t.Error("a fresh result should land on the overview section")
	}
}

// TestStaleAnalysisCompletionIgnored tests the reference guard end to end
func TestStaleAnalysisCompletionIgnored(t *testing.T) {
	m := initialModel(context.Background(), nil)
	m.sess.StartAnalysis("a")
	m.sess.StartAnalysis("b")

	updated, _ := m.Update(AnalysisCompletedMsg{ImageRef: "a", Result: testAnalysis("a")})
	m = updated.(model)

	if m.sess.Ready() {
		t.Error("stale completion must not populate the session")
	}
	if m.sess.ImageRef() != "b" {
		t.Errorf("session reference should remain %q, got %q", "b", m.sess.ImageRef())
	}
}

// TestFilesCompletionBuildsTree tests the tree viewer lifecycle
func TestFilesCompletionBuildsTree(t *testing.T) {
	m := readyModel(t, "nginx:latest")
	m.sess.Trigger(session.KindFileTree)

	forest := []models.FileNode{{Name: "/", Kind: models.KindDirectory, Children: []models.FileNode{}}}
	updated, _ := m.Update(FilesCompletedMsg{ImageRef: "nginx:latest", Forest: forest})
	m = updated.(model)

	if m.tree == nil {
		t.Fatal("a successful listing should instantiate the tree viewer")
	}
	if len(m.tree.visibleRows()) != 1 {
		t.Error("tree viewer should wrap the returned forest")
	}
}

// TestStaleFilesCompletionIgnored verifies a superseded listing never
// replaces the viewer
func TestStaleFilesCompletionIgnored(t *testing.T) {
	m := readyModel(t, "old:1")
	m.sess.Trigger(session.KindFileTree)
	m.sess.StartAnalysis("new:2")

	updated, _ := m.Update(FilesCompletedMsg{ImageRef: "old:1", Forest: sampleForest()})
	m = updated.(model)

	if m.tree != nil {
		t.Error("stale listing must not instantiate a tree viewer")
	}
}

// TestFailedFilesCompletionDropsTree tests that a failed refresh does not
// keep showing the previous forest as if it were current
func TestFailedFilesCompletionDropsTree(t *testing.T) {
	m := readyModel(t, "nginx:latest")
	m.sess.Trigger(session.KindFileTree)
	updated, _ := m.Update(FilesCompletedMsg{ImageRef: "nginx:latest", Forest: sampleForest()})
	m = updated.(model)

	m.sess.Trigger(session.KindFileTree)
	updated, _ = m.Update(FilesCompletedMsg{ImageRef: "nginx:latest", Error: errors.New("boom")})
	m = updated.(model)

	if m.tree != nil {
		t.Error("failed listing should clear the stale viewer")
	}
	if got := m.sess.Slot(session.KindFileTree).Status; got != session.StatusFailed {
		t.Errorf("slot should record the failure, got %v", got)
	}
}

// TestSwitchSectionTriggersFirstFetch tests lazy fetching on section entry
func TestSwitchSectionTriggersFirstFetch(t *testing.T) {
	m := readyModel(t, "nginx:latest")
	m.client = nil // the command is returned, not executed

	updated, cmd := m.switchSection(sectionDockerfile)
	m = updated.(model)

	if got := m.sess.Slot(session.KindDockerfile).Status; got != session.StatusPending {
		t.Errorf("entering the section should trigger its fetch, got %v", got)
	}
	if cmd == nil {
		t.Error("a triggered fetch should produce a command")
	}

	// Re-entering must not re-trigger.
	m.sess.Resolve(session.KindDockerfile, "nginx:latest", "FROM scratch", nil)
	updated, _ = m.switchSection(sectionOverview)
	m = updated.(model)
	updated, _ = m.switchSection(sectionDockerfile)
	m = updated.(model)
	if got := m.sess.Slot(session.KindDockerfile).Status; got != session.StatusSucceeded {
		t.Errorf("revisiting a resolved section must not refetch, got %v", got)
	}
}

// TestChatCompletionAppendsReply tests chat completion handling
func TestChatCompletionAppendsReply(t *testing.T) {
	m := readyModel(t, "nginx:latest")
	if _, ok := m.sess.SendChat("why root?"); !ok {
		t.Fatal("chat should be accepted once the session is ready")
	}

	updated, _ := m.Update(ChatCompletedMsg{ImageRef: "nginx:latest", Reply: "no USER instruction"})
	m = updated.(model)

	log := m.sess.ChatLog()
	if len(log) != 2 || log[1].Text != "no USER instruction" {
		t.Errorf("reply should be appended to the log, got %+v", log)
	}
}

// TestChatFailureFallsBack tests the fallback reply path through the model
func TestChatFailureFallsBack(t *testing.T) {
	m := readyModel(t, "nginx:latest")
	m.sess.SendChat("hi")

	updated, _ := m.Update(ChatCompletedMsg{ImageRef: "nginx:latest", Error: errors.New("connection refused")})
	m = updated.(model)

	log := m.sess.ChatLog()
	if len(log) != 2 || log[1].Text != session.ChatFallbackReply {
		t.Errorf("failed chat should append the fallback reply, got %+v", log)
	}
}

// TestSpinnerAnimation tests spinner tick updates
func TestSpinnerAnimation(t *testing.T) {
	spinner := NewSpinner()
	initialFrame := spinner.View()

	spinner.Next()
	if spinner.View() == initialFrame {
		t.Error("Spinner frame should change after Next()")
	}

	for i := 0; i < 7; i++ {
		spinner.Next()
	}
	if spinner.View() != initialFrame {
		t.Error("Spinner should return to initial frame after full rotation")
	}
}

// TestWrapText tests the paragraph-aware line wrapper
func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four", 10)
	if len(lines) != 2 || lines[0] != "one two" || lines[1] != "three four" {
		t.Errorf("unexpected wrapping %v", lines)
	}

	if lines := wrapText("short", 80); len(lines) != 1 {
		t.Errorf("short text should stay on one line, got %v", lines)
	}
}
