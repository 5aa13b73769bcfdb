package types

import "time"

// InstanceStatus is the lifecycle state reported by Lambda Cloud for an instance.
type InstanceStatus string

const (
	StatusBooting    InstanceStatus = "booting"
	StatusActive     InstanceStatus = "active"
	StatusUnhealthy  InstanceStatus = "unhealthy"
	StatusTerminated InstanceStatus = "terminated"
	StatusUnknown    InstanceStatus = "unknown"
)

// Terminal reports whether the instance can never become ready from this status.
func (s InstanceStatus) Terminal() bool {
	return s == StatusTerminated || s == StatusUnhealthy
}

// Region identifies a Lambda Cloud region.
type Region struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Instance is the last-known snapshot of a Lambda Cloud instance.
type Instance struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	IP              string         `json:"ip,omitempty"`
	PrivateIP       string         `json:"private_ip,omitempty"`
	Status          InstanceStatus `json:"status"`
	Region          Region         `json:"region"`
	InstanceType    InstanceType   `json:"instance_type"`
	Hostname        string         `json:"hostname,omitempty"`
	SSHKeyNames     []string       `json:"ssh_key_names,omitempty"`
	FileSystemNames []string       `json:"file_system_names,omitempty"`
}

// Ready reports whether the instance is active with a resolved IP address.
func (i *Instance) Ready() bool {
	return i.Status == StatusActive && i.IP != ""
}

// LaunchRequest describes a single-instance launch. It is built once per
// launch series and never mutated; retries reuse the same value.
type LaunchRequest struct {
	RegionName       string   `json:"region_name"`
	InstanceTypeName string   `json:"instance_type_name"`
	SSHKeyNames      []string `json:"ssh_key_names"`
	FileSystemNames  []string `json:"file_system_names,omitempty"`
	Name             string   `json:"name,omitempty"`
	ImageID          string   `json:"-"`
	// UserData carries base64-encoded cloud-init content. Opaque to the
	// launch path; produced by the cloudinit package.
	UserData string `json:"user_data,omitempty"`
}

// InstanceTypeSpecs describes the hardware behind an instance type.
type InstanceTypeSpecs struct {
	VCPUs      int `json:"vcpus"`
	MemoryGiB  int `json:"memory_gib"`
	StorageGiB int `json:"storage_gib"`
	GPUs       int `json:"gpus"`
}

// InstanceType describes a Lambda Cloud instance type offering.
type InstanceType struct {
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	GPUDescription    string            `json:"gpu_description,omitempty"`
	PriceCentsPerHour int               `json:"price_cents_per_hour"`
	Specs             InstanceTypeSpecs `json:"specs"`
}

// InstanceTypeOffering pairs an instance type with the regions that
// currently have capacity for it.
type InstanceTypeOffering struct {
	InstanceType                 InstanceType `json:"instance_type"`
	RegionsWithCapacityAvailable []Region     `json:"regions_with_capacity_available"`
}

// Available reports whether any region currently has capacity.
func (o InstanceTypeOffering) Available() bool {
	return len(o.RegionsWithCapacityAvailable) > 0
}

// SSHKey is a registered Lambda Cloud SSH key.
type SSHKey struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
}

// FileSystem is a persistent Lambda Cloud filesystem.
type FileSystem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MountPoint string `json:"mount_point"`
	Region     Region `json:"region"`
	IsInUse    bool   `json:"is_in_use"`
	BytesUsed  int64  `json:"bytes_used,omitempty"`
}

// FirewallRule is one inbound rule of a firewall ruleset. PortRange is a
// [low, high] pair; an empty range means the protocol carries no ports
// (e.g. icmp).
type FirewallRule struct {
	Protocol      string `json:"protocol"`
	PortRange     []int  `json:"port_range,omitempty"`
	SourceNetwork string `json:"source_network"`
	Description   string `json:"description,omitempty"`
}

// FirewallRuleset is a named set of inbound rules scoped to a region.
type FirewallRuleset struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Region      Region         `json:"region"`
	Rules       []FirewallRule `json:"rules"`
	InstanceIDs []string       `json:"instance_ids,omitempty"`
	Created     time.Time      `json:"created,omitempty"`
}

// InUse reports whether any instance is attached to the ruleset.
func (r FirewallRuleset) InUse() bool {
	return len(r.InstanceIDs) > 0
}

// Image is a machine image available for launches.
type Image struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Family       string `json:"family,omitempty"`
	Version      string `json:"version,omitempty"`
	Architecture string `json:"architecture,omitempty"`
	Region       Region `json:"region"`
}
