package hw

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/crypto/ssh"

	"github.com/rjboer/sdrfront/internal/logging"
)

// SSHConfig locates a bench host whose GPIO lines are driven through the
// sysfs GPIO interface over SSH.
type SSHConfig struct {
	Host      string
	User      string
	Password  string
	KeyPath   string
	Port      int
	SysfsRoot string
	// DialRetries bounds reconnect attempts when the host is unreachable.
	DialRetries uint64
	// WriteTimeout bounds a single line write including any reconnect and
	// the SSH handshake.
	WriteTimeout time.Duration
}

// RemoteGPIO shares one SSH connection between all lines on a bench host.
type RemoteGPIO struct {
	mu       sync.Mutex
	cfg      SSHConfig
	client   *ssh.Client
	exported map[int]bool
	logger   logging.Logger
}

// NewRemoteGPIO validates configuration and prepares a host handle. The
// connection is made lazily on the first write.
func NewRemoteGPIO(cfg SSHConfig, logger logging.Logger) (*RemoteGPIO, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ssh host is required for remote gpio")
	}
	if cfg.User == "" {
		cfg.User = "root"
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.SysfsRoot == "" {
		cfg.SysfsRoot = "/sys/class/gpio"
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &RemoteGPIO{
		cfg:      cfg,
		exported: make(map[int]bool),
		logger:   logging.Subsystem(logger, "remote_gpio").With(logging.F("host", cfg.Host)),
	}, nil
}

// Line returns an output line for GPIO number n on the remote host.
func (g *RemoteGPIO) Line(n int) *SysfsLine {
	return &SysfsLine{gpio: g, number: n}
}

// Write drives GPIO n, exporting it as an output on first use. It returns
// when ctx is done even if the remote host stops responding; the connection
// is dropped in that case and redialed on the next write.
func (g *RemoteGPIO) Write(ctx context.Context, n int, high bool) error {
	client, err := g.dial(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	first := !g.exported[n]
	g.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- g.run(client, g.command(n, high, first)) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("write gpio%d via ssh: %w", n, err)
		}
	case <-ctx.Done():
		g.drop(client)
		return fmt.Errorf("write gpio%d via ssh: %w", n, ctx.Err())
	}
	if first {
		g.mu.Lock()
		g.exported[n] = true
		g.mu.Unlock()
	}
	return nil
}

func (g *RemoteGPIO) run(client *ssh.Client, cmd string) error {
	session, err := client.NewSession()
	if err != nil {
		g.drop(client)
		return fmt.Errorf("create ssh session: %w", err)
	}
	defer session.Close()
	return session.Run(cmd)
}

// Close releases the SSH connection.
func (g *RemoteGPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

func (g *RemoteGPIO) command(n int, high bool, export bool) string {
	value := "0"
	if high {
		value = "1"
	}
	dir := path.Join(g.cfg.SysfsRoot, "gpio"+strconv.Itoa(n))
	var cmds []string
	if export {
		cmds = append(cmds,
			fmt.Sprintf("[ -d %s ] || printf %s > %s", shellQuote(dir), shellQuote(strconv.Itoa(n)), shellQuote(path.Join(g.cfg.SysfsRoot, "export"))),
			fmt.Sprintf("printf out > %s", shellQuote(path.Join(dir, "direction"))),
		)
	}
	cmds = append(cmds, fmt.Sprintf("printf %s > %s", value, shellQuote(path.Join(dir, "value"))))
	return strings.Join(cmds, " && ")
}

// drop closes c if it is still the current connection.
func (g *RemoteGPIO) drop(c *ssh.Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil && g.client == c {
		g.client.Close()
		g.client = nil
	}
}

func (g *RemoteGPIO) dial(ctx context.Context) (*ssh.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	auth, err := g.authMethods()
	if err != nil {
		return nil, err
	}
	config := &ssh.ClientConfig{
		User:            g.cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}
	addr := net.JoinHostPort(g.cfg.Host, strconv.Itoa(g.cfg.Port))

	attempt := 0
	connect := func() error {
		attempt++
		dialer := net.Dialer{}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			g.logger.Warn("dial failed", logging.F("attempt", attempt), logging.F("error", err))
			return fmt.Errorf("dial ssh: %w", err)
		}
		deadline := time.Now().Add(config.Timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		conn.SetDeadline(deadline)
		clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
		if err != nil {
			conn.Close()
			return backoff.Permanent(fmt.Errorf("create ssh client: %w", err))
		}
		conn.SetDeadline(time.Time{})
		g.client = ssh.NewClient(clientConn, chans, reqs)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.cfg.DialRetries), ctx)
	if err := backoff.Retry(connect, policy); err != nil {
		return nil, err
	}
	return g.client, nil
}

func (g *RemoteGPIO) authMethods() ([]ssh.AuthMethod, error) {
	auth := []ssh.AuthMethod{}
	if g.cfg.Password != "" {
		auth = append(auth, ssh.Password(g.cfg.Password))
	}
	if g.cfg.KeyPath != "" {
		key, err := os.ReadFile(g.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("no ssh password or key configured")
	}
	return auth, nil
}

// SysfsLine is one GPIO output on a RemoteGPIO host.
type SysfsLine struct {
	gpio   *RemoteGPIO
	number int
}

func (l *SysfsLine) Out(high bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.gpio.cfg.WriteTimeout)
	defer cancel()
	return l.gpio.Write(ctx, l.number, high)
}

func (l *SysfsLine) String() string {
	return fmt.Sprintf("%s:gpio%d", l.gpio.cfg.Host, l.number)
}

// shellQuote wraps value in single quotes with embedded quotes escaped.
func shellQuote(value string) string {
	escaped := strings.ReplaceAll(value, "'", "'\\''")
	return fmt.Sprintf("'%s'", escaped)
}
