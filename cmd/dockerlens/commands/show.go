package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dockerlens/dockerlens/internal/api"
	"github.com/dockerlens/dockerlens/internal/config"
	"github.com/dockerlens/dockerlens/pkg/models"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <image> [section]",
		Short: "Fetch one analysis section without the TUI",
		Long: `Fetch and print one analysis section in a non-interactive format.
Sections: overview (default), dockerfile, optimize, files
With "chat" and a message: asks one question about the image, e.g.
  dockerlens show nginx:latest chat "why is this image running as root?"`,
		Args: cobra.RangeArgs(1, 3),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	client := api.NewClient(config.Load())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	imageRef := args[0]
	section := "overview"
	if len(args) > 1 {
		section = args[1]
	}

	switch section {
	case "overview":
		return showOverview(ctx, client, imageRef)
	case "dockerfile":
		return showDockerfile(ctx, client, imageRef)
	case "optimize":
		return showOptimize(ctx, client, imageRef)
	case "files":
		return showFiles(ctx, client, imageRef)
	case "chat":
		if len(args) < 3 {
			return fmt.Errorf("chat requires a message. Usage: dockerlens show <image> chat \"<message>\"")
		}
		return showChat(ctx, client, imageRef, args[2])
	default:
		return fmt.Errorf("unknown section %q. Sections: overview, dockerfile, optimize, files, chat", section)
	}
}

func showOverview(ctx context.Context, client *api.Client, imageRef string) error {
	result, err := client.Analyze(ctx, imageRef)
	if err != nil {
		return err
	}

	meta := result.Metadata
	fmt.Printf("Image: %s\n", result.Image)
	fmt.Printf("ID: %s\n", meta.ImageID)
	fmt.Printf("OS/Arch: %s/%s\n", meta.OS, meta.Architecture)
	fmt.Printf("Size: %d bytes\n", meta.Size)
	if meta.User != "" {
		fmt.Printf("User: %s\n", meta.User)
	} else {
		fmt.Println("User: not set (runs as root)")
	}
	if len(meta.ExposedPorts) > 0 {
		fmt.Printf("Exposed ports: %s\n", strings.Join(meta.ExposedPorts, ", "))
	}
	fmt.Printf("Layers: %d\n", len(meta.History))
	fmt.Println()
	fmt.Println("Recommendations:")
	fmt.Println("================")
	fmt.Println(result.Recommendations)
	return nil
}

func showDockerfile(ctx context.Context, client *api.Client, imageRef string) error {
	dockerfile, err := client.GenerateDockerfile(ctx, imageRef)
	if err != nil {
		return err
	}
	fmt.Println(dockerfile)
	return nil
}

func showOptimize(ctx context.Context, client *api.Client, imageRef string) error {
	report, err := client.Optimize(ctx, imageRef)
	if err != nil {
		return err
	}

	fmt.Printf("Total size: %d bytes\n", report.TotalSize)
	fmt.Printf("Potential savings: %d bytes\n\n", report.PotentialSavings)
	if len(report.Suggestions) == 0 {
		fmt.Println("No optimization opportunities found.")
		return nil
	}
	for i, suggestion := range report.Suggestions {
		fmt.Printf("%d. %s (saves ~%d bytes)\n", i+1, suggestion.Title, suggestion.EstimatedSavings)
		fmt.Printf("   %s\n\n", suggestion.Description)
	}
	return nil
}

func showFiles(ctx context.Context, client *api.Client, imageRef string) error {
	forest, err := client.ListFiles(ctx, imageRef)
	if err != nil {
		return err
	}
	for i := range forest {
		printNode(&forest[i], 0)
	}
	return nil
}

// printNode prints the full forest; unlike the TUI there is no interaction,
// so every explored directory is walked and unexplored ones are marked.
func printNode(node *models.FileNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if node.IsDir() {
		fmt.Printf("%s%s/\n", indent, node.Name)
		if !node.Explored() {
			fmt.Printf("%s  (not explored)\n", indent)
			return
		}
		for i := range node.Children {
			printNode(&node.Children[i], depth+1)
		}
		return
	}
	fmt.Printf("%s%s (%d bytes)\n", indent, node.Name, node.SizeBytes)
}

func showChat(ctx context.Context, client *api.Client, imageRef, message string) error {
	reply, err := client.Chat(ctx, imageRef, message)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}
