package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tscholak/devbox/internal/orchestrate"
)

func restartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart <instance-id>...",
		Short: "Restart instances",
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
			restarted, err := lifecycle.Restart(ctx, args)
			if err != nil {
				return describeFailure(orchestrate.Classify(err))
			}

			for _, instance := range restarted {
				fmt.Printf("Restarting: %s (run 'devbox wait %s' to wait for readiness)\n",
					instance.ID, instance.ID)
			}
			return nil
		},
	}
}
