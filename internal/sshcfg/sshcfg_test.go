package sshcfg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tscholak/devbox/pkg/types"
)

func TestCommand(t *testing.T) {
	instance := &types.Instance{ID: "i-abc123", IP: "203.0.113.7"}
	assert.Equal(t, "ssh ubuntu@203.0.113.7", Command(instance, "ubuntu"))
}

func TestHostBlock(t *testing.T) {
	instance := &types.Instance{ID: "i-abc123", IP: "203.0.113.7"}
	block := HostBlock(instance, "devbox", "ubuntu")

	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	assert.Equal(t, "Host devbox", lines[0])
	assert.Contains(t, block, "HostName 203.0.113.7")
	assert.Contains(t, block, "User ubuntu")
	assert.Contains(t, block, "StrictHostKeyChecking no")
}
