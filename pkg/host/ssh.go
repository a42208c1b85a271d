package host

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/vdt/jetpants/pkg/models"
	"golang.org/x/crypto/ssh"
)

// DialConfig carries the credentials and limits used to open sessions.
type DialConfig struct {
	DefaultPort int
	Timeout     time.Duration

	// Resolve returns the credentials and port for an address.
	// Addresses without inventory entries fall back to Default and
	// DefaultPort.
	Resolve func(addr string) (models.Identity, int, bool)
	Default models.Identity
}

const defaultDialTimeout = 5 * time.Second

// NewSSHDial builds a DialFunc backed by golang.org/x/crypto/ssh. Host
// key checking is disabled: this is an internal trusted-fleet tool,
// not an internet-facing client.
func NewSSHDial(cfg DialConfig) DialFunc {
	return func(ctx context.Context, addr string) (Session, error) {
		client, err := DialSSHClient(ctx, addr, cfg)
		if err != nil {
			return nil, err
		}
		return &sshSession{client: client}, nil
	}
}

// DialSSHClient opens a raw *ssh.Client to addr using the DialConfig's
// credentials. The sftp transfer layer reuses this to share the same
// auth behavior as the session pool.
func DialSSHClient(ctx context.Context, addr string, cfg DialConfig) (*ssh.Client, error) {
	if cfg.DefaultPort == 0 {
		cfg.DefaultPort = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultDialTimeout
	}
	id, port := cfg.Default, cfg.DefaultPort
	if cfg.Resolve != nil {
		if foundID, foundPort, ok := cfg.Resolve(addr); ok {
			id = foundID
			if foundPort != 0 {
				port = foundPort
			}
		}
	}
	sshCfg, err := buildSSHConfig(id, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("ssh config for %s: %w", addr, err)
	}

	target := net.JoinHostPort(addr, strconv.Itoa(port))
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	ncc, chans, reqs, err := ssh.NewClientConn(conn, target, sshCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", target, err)
	}
	return ssh.NewClient(ncc, chans, reqs), nil
}

// buildSSHConfig assembles the auth method list: every readable key in
// order, then password as a fallback.
func buildSSHConfig(id models.Identity, timeout time.Duration) (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod
	for _, keyPath := range id.KeyPaths {
		keyBytes, err := os.ReadFile(expandHomeDir(keyPath))
		if err != nil {
			continue
		}
		var signer ssh.Signer
		if id.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(id.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyBytes)
		}
		if err != nil {
			return nil, fmt.Errorf("parse private key %s: %w", keyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if id.Password != "" {
		methods = append(methods, ssh.Password(id.Password))
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("no usable auth method for user %q", id.User)
	}
	return &ssh.ClientConfig{
		User:            id.User,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

func expandHomeDir(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return home + path[1:]
		}
	}
	return path
}

// sshSession adapts one long-lived *ssh.Client to the Session
// interface; each Run opens a fresh exec channel on it.
type sshSession struct {
	client *ssh.Client
}

func (s *sshSession) Run(ctx context.Context, cmd string) (string, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", err
	}
	defer sess.Close()

	var b bytes.Buffer
	sess.Stdout = &b
	sess.Stderr = &b
	if err := sess.Start(cmd); err != nil {
		return "", fmt.Errorf("start command: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- sess.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return b.String(), fmt.Errorf("command failed: %w, output: %s", err, b.String())
		}
		return b.String(), nil
	case <-ctx.Done():
		if killErr := sess.Signal(ssh.SIGKILL); killErr != nil {
			return b.String(), fmt.Errorf("kill after context done: %w", killErr)
		}
		return b.String(), ctx.Err()
	}
}

func (s *sshSession) Close() error {
	return s.client.Close()
}
