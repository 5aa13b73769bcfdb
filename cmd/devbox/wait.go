package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tscholak/devbox/internal/orchestrate"
	"github.com/tscholak/devbox/internal/sshcfg"
)

func waitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wait <instance-id>",
		Short: "Wait for an instance to become ready",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, client, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signalContext()
			defer cancel()

			poller := orchestrate.NewPoller(logger, client)
			fmt.Printf("Waiting for %s to become ready...\n", args[0])

			instance, err := poller.WaitReady(ctx, args[0], orchestrate.PollConfig{
				Interval: cfg.Wait.PollInterval,
				Timeout:  cfg.Wait.Timeout,
			})
			if err != nil {
				return describeFailure(err)
			}

			fmt.Printf("Ready: %s (%s)\n", instance.ID, instance.IP)
			fmt.Printf("Connect: %s\n", sshcfg.Command(instance, cfg.SSH.Username))
			return nil
		},
	}
}
