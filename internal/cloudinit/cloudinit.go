// Package cloudinit renders the cloud-init user data attached to launches.
// The rendered blob is opaque to the launch path; it only configures the
// instance to mount the persistent filesystem and link durable directories.
package cloudinit

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"text/template"
)

//go:embed templates/cloud-init.yaml.tmpl
var defaultTemplate string

// Context holds the variables the cloud-init template renders with.
type Context struct {
	FileSystemName  string
	FileSystemMount string
	SSHUsername     string
}

// NewContext builds a render context for the given filesystem and user.
// Lambda Cloud mounts filesystems under /lambda/nfs/<name>.
func NewContext(fileSystemName, sshUsername string) Context {
	ctx := Context{
		FileSystemName: fileSystemName,
		SSHUsername:    sshUsername,
	}
	if fileSystemName != "" {
		ctx.FileSystemMount = "/lambda/nfs/" + fileSystemName
	}
	return ctx
}

// Render renders the embedded cloud-init template with ctx.
func Render(ctx Context) (string, error) {
	tmpl, err := template.New("cloud-init").Parse(defaultTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse cloud-init template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to render cloud-init template: %w", err)
	}
	return buf.String(), nil
}

// Encode encodes rendered cloud-init content to base64 as required by the
// launch request's user data field.
func Encode(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}

// RenderEncoded renders the template and returns the base64-encoded result.
func RenderEncoded(ctx Context) (string, error) {
	content, err := Render(ctx)
	if err != nil {
		return "", err
	}
	return Encode(content), nil
}
