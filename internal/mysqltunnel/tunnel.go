// Package mysqltunnel connects to MySQL servers that are only reachable
// through an SSH bastion, registering an SSH-backed network with the
// MySQL driver.
package mysqltunnel

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/ssh"
)

// sshNetwork is the custom network name registered with the MySQL driver.
const sshNetwork = "ssh+tcp"

// SSHConfig describes the bastion host.
type SSHConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration

	// HostKeyCallback defaults to accepting any host key, which matches
	// the throwaway analysis environments this tool targets.
	HostKeyCallback ssh.HostKeyCallback
}

func (c *SSHConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.HostKeyCallback == nil {
		c.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	}
}

// Tunnel holds an open SSH connection whose dialer is registered with
// the MySQL driver under the "ssh+tcp" network.
type Tunnel struct {
	client *ssh.Client
}

// Dial opens the SSH connection and registers its dialer with the MySQL
// driver. Close the tunnel after the last MySQL connection using it.
func Dial(cfg SSHConfig) (*Tunnel, error) {
	cfg.applyDefaults()
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("ssh host and user are required")
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: cfg.HostKeyCallback,
		Timeout:         cfg.Timeout,
	}
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	client, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("dialing ssh bastion %s: %w", addr, err)
	}

	mysql.RegisterDialContext(sshNetwork, func(ctx context.Context, addr string) (net.Conn, error) {
		return client.DialContext(ctx, "tcp", addr)
	})
	return &Tunnel{client: client}, nil
}

// Close tears down the SSH connection.
func (t *Tunnel) Close() error {
	return t.client.Close()
}
