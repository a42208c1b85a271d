// Package sftp seeds individual files onto machines over the SFTP
// subsystem. Bulk tree distribution goes through the copy chain; this
// layer exists for pushing configs, keys and single artifacts.
package sftp

import (
	"fmt"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// ProgressCallback receives the incremental byte count of each
// transferred chunk. It must be safe for concurrent use.
type ProgressCallback func(n int)

// Client wraps an sftp.Client opened on an existing SSH connection.
type Client struct {
	sftpClient *sftp.Client
	sshClient  *ssh.Client
}

// NewClient opens the SFTP subsystem on an established SSH connection.
func NewClient(sshCli *ssh.Client) (*Client, error) {
	client, err := sftp.NewClient(sshCli)
	if err != nil {
		return nil, fmt.Errorf("open sftp subsystem: %w", err)
	}
	return &Client{sftpClient: client, sshClient: sshCli}, nil
}

// Close shuts down the SFTP session and the underlying SSH connection.
func (c *Client) Close() error {
	err := c.sftpClient.Close()
	if cerr := c.sshClient.Close(); err == nil {
		err = cerr
	}
	return err
}

// JoinPath joins remote path elements; SFTP mandates forward slashes.
func (c *Client) JoinPath(elem ...string) string {
	return c.sftpClient.Join(elem...)
}
