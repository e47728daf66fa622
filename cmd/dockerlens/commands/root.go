package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockerlens/dockerlens/internal/api"
	"github.com/dockerlens/dockerlens/internal/config"
	"github.com/dockerlens/dockerlens/internal/tui"
)

var cfgFile string

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dockerlens",
		Short: "Inspect container images with AI-assisted analysis",
		Long: `dockerlens is a TUI client for an AI Docker image analyzer service.
Submit an image reference to browse its metadata, security recommendations,
a reconstructed Dockerfile, an optimization report, the image file tree,
and a free-form chat about the image.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Init(cfgFile)
		},
		RunE: runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dockerlens/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "analyzer service URL (default "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-request timeout")

	viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	client := api.NewClient(config.Load())
	if err := tui.Run(context.Background(), client); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
