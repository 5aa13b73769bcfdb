package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tscholak/devbox/internal/config"
	"github.com/tscholak/devbox/internal/lambda"
	"go.uber.org/zap"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "devbox",
		Short: "Ephemeral Lambda Cloud GPU devboxes with persistent state",
		Long: `devbox manages ephemeral Lambda Cloud GPU instances that behave as if
persistent: launch with capacity retry, wait until ready, use, terminate,
relaunch. Durable state lives on a named cloud filesystem and survives
across terminations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath(), "Configuration file path")

	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(downCmd())
	rootCmd.AddCommand(restartCmd())
	rootCmd.AddCommand(waitCmd())
	rootCmd.AddCommand(sshCmd())
	rootCmd.AddCommand(listCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the logger and API client.
func setup() (*config.Config, *zap.Logger, *lambda.Client, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := cfg.SetupLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	client := lambda.NewClient(logger, cfg.API.BaseURL, cfg.API.APIKey, cfg.API.Timeout)
	return cfg, logger, client, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so backoff
// and poll waits terminate promptly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
