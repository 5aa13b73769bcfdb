// Package sshcfg produces ssh_config snippets and commands for instances.
package sshcfg

import (
	"fmt"
	"strings"

	"github.com/tscholak/devbox/pkg/types"
)

// Command returns the one-line ssh invocation for an instance.
func Command(instance *types.Instance, username string) string {
	return fmt.Sprintf("ssh %s@%s", username, instance.IP)
}

// HostBlock returns an ssh_config Host block for an instance. Host key
// checking is relaxed because the host key changes on every relaunch while
// the alias stays stable.
func HostBlock(instance *types.Instance, alias, username string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Host %s\n", alias)
	fmt.Fprintf(&b, "    HostName %s\n", instance.IP)
	fmt.Fprintf(&b, "    User %s\n", username)
	b.WriteString("    StrictHostKeyChecking no\n")
	b.WriteString("    UserKnownHostsFile /dev/null\n")
	return b.String()
}
