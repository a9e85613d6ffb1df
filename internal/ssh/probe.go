// Package ssh 用已保存的凭据对服务器做一次 SSH 登录探测。
package ssh

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/zx06/minke/internal/errors"
)

// Result 描述一次成功的探测。
type Result struct {
	Addr          string `json:"addr" yaml:"addr"`
	User          string `json:"user" yaml:"user"`
	ServerVersion string `json:"server_version" yaml:"server_version"`
	ElapsedMS     int64  `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Probe 建立 SSH 连接并完成认证后立即关闭。
func Probe(ctx context.Context, opts Options) (Result, *errors.XError) {
	if opts.Host == "" {
		return Result{}, errors.New(errors.CodeCfgInvalid, "ssh host is required", nil)
	}
	if opts.User == "" {
		return Result{}, errors.New(errors.CodeCfgInvalid, "ssh user is required", nil)
	}
	addr := joinAddr(opts.Host, opts.Port)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hostKeyCallback, xe := buildHostKeyCallback(opts)
	if xe != nil {
		return Result{}, xe
	}
	config := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            buildAuthMethods(opts.Password),
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{}, errors.Wrap(errors.CodeSSHDialFailed, "failed to connect to ssh server", map[string]any{"addr": addr}, err)
	}
	// handshake 不感知 ctx，用 deadline 兜住
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return Result{}, classify(err, addr)
	}
	client := ssh.NewClient(c, chans, reqs)
	defer client.Close()

	return Result{
		Addr:          addr,
		User:          opts.User,
		ServerVersion: string(client.ServerVersion()),
		ElapsedMS:     time.Since(start).Milliseconds(),
	}, nil
}

func classify(err error, addr string) *errors.XError {
	details := map[string]any{"addr": addr}
	var keyErr *knownhosts.KeyError
	if stderrors.As(err, &keyErr) {
		if len(keyErr.Want) == 0 {
			return errors.Wrap(errors.CodeSSHHostKeyMismatch, "ssh host key is not in known_hosts", details, err)
		}
		return errors.Wrap(errors.CodeSSHHostKeyMismatch, "ssh host key mismatch", details, err)
	}
	var revoked *knownhosts.RevokedError
	if stderrors.As(err, &revoked) {
		return errors.Wrap(errors.CodeSSHHostKeyMismatch, "ssh host key is revoked", details, err)
	}
	if strings.Contains(err.Error(), "knownhosts:") {
		return errors.Wrap(errors.CodeSSHHostKeyMismatch, "ssh host key verification failed", details, err)
	}
	if strings.Contains(err.Error(), "unable to authenticate") {
		return errors.Wrap(errors.CodeSSHAuthFailed, "ssh authentication failed", details, err)
	}
	return errors.Wrap(errors.CodeSSHDialFailed, "ssh handshake failed", details, err)
}

func buildAuthMethods(password string) []ssh.AuthMethod {
	return []ssh.AuthMethod{
		ssh.Password(password),
		// 部分服务器仅开启 keyboard-interactive，统一用同一个密码作答
		ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range answers {
				answers[i] = password
			}
			return answers, nil
		}),
	}
}

func buildHostKeyCallback(opts Options) (ssh.HostKeyCallback, *errors.XError) {
	if opts.SkipKnownHostsCheck {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	khPath := opts.KnownHostsFile
	if khPath == "" {
		khPath = DefaultKnownHostsPath()
	}
	khPath = expandPath(khPath)
	cb, err := knownhosts.New(khPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeSSHHostKeyMismatch, "known_hosts file not found; use --skip-host-key to bypass (not recommended)", map[string]any{"path": khPath})
		}
		return nil, errors.Wrap(errors.CodeSSHHostKeyMismatch, "failed to parse known_hosts", map[string]any{"path": khPath}, err)
	}
	return cb, nil
}

// joinAddr 允许 host 自带端口（host:port / [v6]:port），否则使用 port。
func joinAddr(host string, port int) string {
	if h, p, err := net.SplitHostPort(host); err == nil && p != "" {
		return net.JoinHostPort(h, p)
	}
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	return p
}
