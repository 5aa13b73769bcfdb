package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tscholak/devbox/internal/orchestrate"
)

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down <instance-id>...",
		Short: "Terminate instances",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, client, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signalContext()
			defer cancel()

			lifecycle := orchestrate.NewLifecycle(logger, client, nil)
			terminated, err := lifecycle.Terminate(ctx, args)
			if err != nil {
				return describeFailure(orchestrate.Classify(err))
			}

			for _, instance := range terminated {
				fmt.Printf("Terminated: %s\n", instance.ID)
			}
			return nil
		},
	}
}
