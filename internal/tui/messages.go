package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dockerlens/dockerlens/internal/api"
	"github.com/dockerlens/dockerlens/pkg/models"
)

// Completion messages for async operations. Each carries the image
// reference its request was issued for so the update loop can discard
// responses that no longer match the current session.
type (
	// AnalysisCompletedMsg is the outcome of the primary analysis.
	AnalysisCompletedMsg struct {
		ImageRef string
		Result   *models.AnalysisResult
		Error    error
	}

	// DockerfileCompletedMsg is the outcome of a Dockerfile reconstruction.
	DockerfileCompletedMsg struct {
		ImageRef   string
		Dockerfile string
		Error      error
	}

	// OptimizeCompletedMsg is the outcome of an optimization scan.
	OptimizeCompletedMsg struct {
		ImageRef string
		Report   *models.OptimizationReport
		Error    error
	}

	// FilesCompletedMsg is the outcome of a file-system listing.
	FilesCompletedMsg struct {
		ImageRef string
		Forest   []models.FileNode
		Error    error
	}

	// ChatCompletedMsg is the outcome of one chat exchange.
	ChatCompletedMsg struct {
		ImageRef string
		Reply    string
		Error    error
	}

	// TickMsg drives the spinner animation while anything is pending.
	TickMsg time.Time
)

// Commands for async operations. Each runs its network call on the command
// goroutine and reports back with a completion message; the model is never
// touched outside the update loop.

func analyzeCmd(ctx context.Context, client *api.Client, imageRef string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.Analyze(ctx, imageRef)
		return AnalysisCompletedMsg{ImageRef: imageRef, Result: result, Error: err}
	}
}

func generateDockerfileCmd(ctx context.Context, client *api.Client, imageRef string) tea.Cmd {
	return func() tea.Msg {
		dockerfile, err := client.GenerateDockerfile(ctx, imageRef)
		return DockerfileCompletedMsg{ImageRef: imageRef, Dockerfile: dockerfile, Error: err}
	}
}

func optimizeCmd(ctx context.Context, client *api.Client, imageRef string) tea.Cmd {
	return func() tea.Msg {
		report, err := client.Optimize(ctx, imageRef)
		return OptimizeCompletedMsg{ImageRef: imageRef, Report: report, Error: err}
	}
}

func listFilesCmd(ctx context.Context, client *api.Client, imageRef string) tea.Cmd {
	return func() tea.Msg {
		forest, err := client.ListFiles(ctx, imageRef)
		return FilesCompletedMsg{ImageRef: imageRef, Forest: forest, Error: err}
	}
}

func chatCmd(ctx context.Context, client *api.Client, imageRef, message string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.Chat(ctx, imageRef, message)
		return ChatCompletedMsg{ImageRef: imageRef, Reply: reply, Error: err}
	}
}

// tickCmd creates a ticker for spinner animation.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
