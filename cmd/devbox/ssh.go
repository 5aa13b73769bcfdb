package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tscholak/devbox/internal/orchestrate"
	"github.com/tscholak/devbox/internal/sshcfg"
)

func sshCmd() *cobra.Command {
	var printConfig bool

	cmd := &cobra.Command{
		Use:   "ssh <instance-id>",
		Short: "Print the SSH command (or ssh_config block) for an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, client, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signalContext()
			defer cancel()

			instance, err := client.GetInstance(ctx, args[0])
			if err != nil {
				return describeFailure(orchestrate.Classify(err))
			}
			if instance.IP == "" {
				return fmt.Errorf("instance %s has no IP address yet (status: %s)", instance.ID, instance.Status)
			}

			if printConfig {
				fmt.Print(sshcfg.HostBlock(instance, cfg.SSH.HostAlias, cfg.SSH.Username))
				return nil
			}
			fmt.Println(sshcfg.Command(instance, cfg.SSH.Username))
			return nil
		},
	}

	cmd.Flags().BoolVar(&printConfig, "ssh-config", false, "Print an ssh_config Host block instead of a command")

	return cmd
}
