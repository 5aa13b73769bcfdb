package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tscholak/devbox/internal/cloudinit"
	"github.com/tscholak/devbox/internal/config"
	"github.com/tscholak/devbox/internal/lambda"
	"github.com/tscholak/devbox/internal/orchestrate"
	"github.com/tscholak/devbox/internal/sshcfg"
	"github.com/tscholak/devbox/pkg/types"
)

// consoleEvents prints retry progress for interactive use.
type consoleEvents struct{}

func (consoleEvents) RetryScheduled(ev orchestrate.RetryEvent) {
	fmt.Printf("No capacity yet (attempt %d), retrying in %s...\n", ev.Attempt+1, ev.Delay)
}

func (consoleEvents) LaunchSucceeded(instanceID string, attempts int) {
	fmt.Printf("Launched: %s\n", instanceID)
}

func (consoleEvents) LaunchFailed(err error, attempts int) {}

func upCmd() *cobra.Command {
	var (
		region       string
		instanceType string
		sshKey       string
		filesystem   string
		imageID      string
		name         string
		noWait       bool
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Launch an instance and wait until it is ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, client, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			applyLaunchDefaults(&cfg.Launch, &region, &instanceType, &sshKey, &filesystem, &imageID, &name)
			if region == "" || instanceType == "" || sshKey == "" {
				return fmt.Errorf("region, instance type, and ssh key are required (flags or config)")
			}
			if name == "" {
				name = "devbox-" + uuid.NewString()[:8]
			}

			userData, err := cloudinit.RenderEncoded(cloudinit.NewContext(filesystem, cfg.SSH.Username))
			if err != nil {
				return err
			}

			req := &types.LaunchRequest{
				RegionName:       region,
				InstanceTypeName: instanceType,
				SSHKeyNames:      []string{sshKey},
				Name:             name,
				ImageID:          imageID,
				UserData:         userData,
			}
			if filesystem != "" {
				req.FileSystemNames = []string{filesystem}
			}

			retryCfg := orchestrate.RetryConfig{
				MaxAttempts:  cfg.Retry.MaxAttempts,
				InitialDelay: cfg.Retry.InitialDelay,
				MaxDelay:     cfg.Retry.MaxDelay,
				Multiplier:   cfg.Retry.Multiplier,
				Jitter:       cfg.Retry.Jitter,
			}
			pollCfg := orchestrate.PollConfig{
				Interval: cfg.Wait.PollInterval,
				Timeout:  cfg.Wait.Timeout,
			}

			ctx, cancel := signalContext()
			defer cancel()

			lifecycle := orchestrate.NewLifecycle(logger, client, consoleEvents{})

			fmt.Printf("Launching %s in %s...\n", instanceType, region)

			if noWait {
				launcher := orchestrate.NewLauncher(logger, client, consoleEvents{})
				instance, err := launcher.Launch(ctx, req, retryCfg)
				if err != nil {
					return describeFailure(err)
				}
				fmt.Printf("Instance %s is booting; run 'devbox wait %s' to wait for readiness\n",
					instance.ID, instance.ID)
				return nil
			}

			instance, err := lifecycle.BringUp(ctx, req, retryCfg, pollCfg)
			if err != nil {
				return describeFailure(err)
			}

			fmt.Printf("Ready: %s (%s)\n", instance.ID, instance.IP)
			fmt.Printf("Connect: %s\n", sshcfg.Command(instance, cfg.SSH.Username))
			if filesystem != "" {
				fmt.Printf("Persistent storage: /lambda/nfs/%s\n", filesystem)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "Region to launch in")
	cmd.Flags().StringVar(&instanceType, "instance-type", "", "Instance type name")
	cmd.Flags().StringVar(&sshKey, "ssh-key", "", "SSH key name")
	cmd.Flags().StringVar(&filesystem, "filesystem", "", "Persistent filesystem to attach")
	cmd.Flags().StringVar(&imageID, "image-id", "", "Image ID to launch from")
	cmd.Flags().StringVar(&name, "name", "", "Instance name")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return after launch without waiting for readiness")

	return cmd
}

// applyLaunchDefaults fills unset flags from the launch section of the config.
func applyLaunchDefaults(launch *config.LaunchConfig, region, instanceType, sshKey, filesystem, imageID, name *string) {
	if *region == "" {
		*region = launch.Region
	}
	if *instanceType == "" {
		*instanceType = launch.InstanceType
	}
	if *sshKey == "" {
		*sshKey = launch.SSHKeyName
	}
	if *filesystem == "" {
		*filesystem = launch.FileSystem
	}
	if *imageID == "" {
		*imageID = launch.ImageID
	}
	if *name == "" {
		*name = launch.Name
	}
}

// describeFailure turns a terminal orchestration failure into an actionable
// message, keeping the original remote message visible.
func describeFailure(err error) error {
	var exhausted *orchestrate.RetriesExhaustedError
	if errors.As(err, &exhausted) {
		return fmt.Errorf("%w\nTry another region or instance type, or raise retry.max_attempts", err)
	}

	var timeout *orchestrate.PollTimeoutError
	if errors.As(err, &timeout) {
		return fmt.Errorf("%w\nThe instance may still come up; check with 'devbox wait %s' or terminate it with 'devbox down %s'",
			err, timeout.InstanceID, timeout.InstanceID)
	}

	var classified *orchestrate.ClassifiedError
	if errors.As(err, &classified) {
		var apiErr *lambda.APIError
		if errors.As(err, &apiErr) && apiErr.Suggestion != "" {
			return fmt.Errorf("%w\n%s", err, apiErr.Suggestion)
		}
		switch classified.Kind {
		case orchestrate.KindAuth:
			return fmt.Errorf("%w\nCheck your API key (api.api_key or DEVBOX_API_KEY)", err)
		case orchestrate.KindQuota:
			return fmt.Errorf("%w\nYour account quota is exceeded; terminate unused instances or request a quota increase", err)
		case orchestrate.KindValidation:
			return fmt.Errorf("%w\nCheck the launch parameters in your config and flags", err)
		}
	}

	return err
}
