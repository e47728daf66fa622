package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockerlens/dockerlens/internal/api"
	"github.com/dockerlens/dockerlens/internal/config"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the analyzer service is reachable",
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	client := api.NewClient(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	status, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("health check against %s failed: %w", cfg.APIURL, err)
	}

	fmt.Printf("%s: %s\n", cfg.APIURL, status)
	return nil
}
