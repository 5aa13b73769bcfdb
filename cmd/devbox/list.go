package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tscholak/devbox/internal/lambda"
	"github.com/tscholak/devbox/internal/orchestrate"
	"github.com/tscholak/devbox/pkg/types"
)

func listCmd() *cobra.Command {
	var availableOnly bool

	cmd := &cobra.Command{
		Use:       "list [instances|instance-types|images|filesystems|ssh-keys|firewall-rulesets]",
		Short:     "List Lambda Cloud resources",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"instances", "instance-types", "images", "filesystems", "ssh-keys", "firewall-rulesets"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, client, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signalContext()
			defer cancel()

			resource := "instances"
			if len(args) > 0 {
				resource = args[0]
			}

			switch resource {
			case "instances":
				err = listInstances(ctx, client)
			case "instance-types":
				err = listInstanceTypes(ctx, client, availableOnly)
			case "images":
				err = listImages(ctx, client, availableOnly)
			case "filesystems":
				err = listFileSystems(ctx, client, availableOnly)
			case "ssh-keys":
				err = listSSHKeys(ctx, client)
			case "firewall-rulesets":
				err = listFirewallRulesets(ctx, client, availableOnly)
			default:
				return fmt.Errorf("unknown resource: %s", resource)
			}
			if err != nil {
				return describeFailure(orchestrate.Classify(err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&availableOnly, "available-only", false, "Only show instance types with available capacity; for regional resources, only regions with capacity")

	return cmd
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func listInstances(ctx context.Context, client *lambda.Client) error {
	instances, err := client.ListInstances(ctx)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		fmt.Println("No instances found")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tSTATUS\tIP\tREGION\tTYPE\tNAME")
	for _, instance := range instances {
		ip := instance.IP
		if ip == "" {
			ip = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			instance.ID, instance.Status, ip,
			instance.Region.Name, instance.InstanceType.Name, instance.Name)
	}
	return w.Flush()
}

func listInstanceTypes(ctx context.Context, client *lambda.Client, availableOnly bool) error {
	offerings, err := client.ListInstanceTypes(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(offerings))
	for name, offering := range offerings {
		if availableOnly && !offering.Available() {
			continue
		}
		names = append(names, name)
	}
	// Available capacity first, then descending price.
	sort.Slice(names, func(i, j int) bool {
		a, b := offerings[names[i]], offerings[names[j]]
		if a.Available() != b.Available() {
			return a.Available()
		}
		if a.InstanceType.PriceCentsPerHour != b.InstanceType.PriceCentsPerHour {
			return a.InstanceType.PriceCentsPerHour > b.InstanceType.PriceCentsPerHour
		}
		return names[i] < names[j]
	})

	w := newTable()
	fmt.Fprintln(w, "TYPE\tGPUS\tVCPUS\tRAM\t$/HR\tREGIONS WITH CAPACITY")
	for _, name := range names {
		offering := offerings[name]
		regions := "-"
		if offering.Available() {
			regionNames := make([]string, 0, len(offering.RegionsWithCapacityAvailable))
			for _, region := range offering.RegionsWithCapacityAvailable {
				regionNames = append(regionNames, region.Name)
			}
			sort.Strings(regionNames)
			regions = strings.Join(regionNames, ",")
		}
		specs := offering.InstanceType.Specs
		fmt.Fprintf(w, "%s\t%d\t%d\t%d GiB\t%.2f\t%s\n",
			name, specs.GPUs, specs.VCPUs, specs.MemoryGiB,
			float64(offering.InstanceType.PriceCentsPerHour)/100, regions)
	}
	return w.Flush()
}

// regionsWithCapacity returns the names of regions where at least one
// instance type currently has capacity.
func regionsWithCapacity(offerings map[string]types.InstanceTypeOffering) map[string]bool {
	regions := make(map[string]bool)
	for _, offering := range offerings {
		for _, region := range offering.RegionsWithCapacityAvailable {
			regions[region.Name] = true
		}
	}
	return regions
}

func availableRegions(ctx context.Context, client *lambda.Client) (map[string]bool, error) {
	offerings, err := client.ListInstanceTypes(ctx)
	if err != nil {
		return nil, err
	}
	return regionsWithCapacity(offerings), nil
}

func listImages(ctx context.Context, client *lambda.Client, availableOnly bool) error {
	images, err := client.ListImages(ctx)
	if err != nil {
		return err
	}
	if availableOnly {
		regions, err := availableRegions(ctx, client)
		if err != nil {
			return err
		}
		filtered := images[:0]
		for _, image := range images {
			if regions[image.Region.Name] {
				filtered = append(filtered, image)
			}
		}
		images = filtered
	}
	if len(images) == 0 {
		fmt.Println("No images found")
		return nil
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].Family != images[j].Family {
			return images[i].Family < images[j].Family
		}
		return images[i].Region.Name < images[j].Region.Name
	})

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tFAMILY\tVERSION\tARCH\tREGION")
	for _, image := range images {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			image.ID, image.Name, image.Family, image.Version,
			image.Architecture, image.Region.Name)
	}
	return w.Flush()
}

func listFileSystems(ctx context.Context, client *lambda.Client, availableOnly bool) error {
	filesystems, err := client.ListFileSystems(ctx)
	if err != nil {
		return err
	}
	if availableOnly {
		regions, err := availableRegions(ctx, client)
		if err != nil {
			return err
		}
		filtered := filesystems[:0]
		for _, fs := range filesystems {
			if regions[fs.Region.Name] {
				filtered = append(filtered, fs)
			}
		}
		filesystems = filtered
	}
	if len(filesystems) == 0 {
		fmt.Println("No filesystems found")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "NAME\tREGION\tMOUNT POINT\tIN USE\tUSED")
	for _, fs := range filesystems {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			fs.Name, fs.Region.Name, fs.MountPoint, fs.IsInUse, formatBytes(fs.BytesUsed))
	}
	return w.Flush()
}

func listSSHKeys(ctx context.Context, client *lambda.Client) error {
	keys, err := client.ListSSHKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("No SSH keys found")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME")
	for _, key := range keys {
		fmt.Fprintf(w, "%s\t%s\n", key.ID, key.Name)
	}
	return w.Flush()
}

func listFirewallRulesets(ctx context.Context, client *lambda.Client, availableOnly bool) error {
	rulesets, err := client.ListFirewallRulesets(ctx)
	if err != nil {
		return err
	}
	if availableOnly {
		regions, err := availableRegions(ctx, client)
		if err != nil {
			return err
		}
		filtered := rulesets[:0]
		for _, rs := range rulesets {
			if regions[rs.Region.Name] {
				filtered = append(filtered, rs)
			}
		}
		rulesets = filtered
	}
	if len(rulesets) == 0 {
		fmt.Println("No firewall rulesets found")
		return nil
	}

	sort.Slice(rulesets, func(i, j int) bool {
		return rulesets[i].Name < rulesets[j].Name
	})

	w := newTable()
	fmt.Fprintln(w, "NAME\tID\tREGION\tIN USE\tRULES\tCREATED")
	for _, rs := range rulesets {
		inUse := "-"
		if rs.InUse() {
			inUse = fmt.Sprintf("%d instances", len(rs.InstanceIDs))
		}
		created := "-"
		if !rs.Created.IsZero() {
			created = rs.Created.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			rs.Name, rs.ID, rs.Region.Name, inUse, len(rs.Rules), created)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, rs := range rulesets {
		if len(rs.Rules) == 0 {
			continue
		}
		fmt.Printf("\nRules for %s:\n", rs.Name)
		w := newTable()
		fmt.Fprintln(w, "PROTOCOL\tPORTS\tSOURCE\tDESCRIPTION")
		for _, rule := range rs.Rules {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				rule.Protocol, formatPortRange(rule.PortRange), rule.SourceNetwork, rule.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// formatPortRange renders a [low, high] pair, collapsing single-port ranges.
func formatPortRange(ports []int) string {
	switch {
	case len(ports) == 2 && ports[0] == ports[1]:
		return strconv.Itoa(ports[0])
	case len(ports) == 2:
		return fmt.Sprintf("%d-%d", ports[0], ports[1])
	default:
		return "-"
	}
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n > 0:
		return fmt.Sprintf("%d B", n)
	default:
		return "-"
	}
}
