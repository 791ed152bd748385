package exporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SFTPSink uploads category files to a remote directory.
//
// The SSH connection is dialed on first Open and shared by concurrent exports; call Close when done.
type SFTPSink struct {
	cfg shared.SFTPConfig

	mu     sync.Mutex
	ssh    *ssh.Client
	client *sftp.Client
}

// NewSFTPSink validates cfg and returns a sink that connects lazily.
func NewSFTPSink(cfg shared.SFTPConfig) (*SFTPSink, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("%w: sftp host and user are required", shared.ErrSinkNotReady)
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	return &SFTPSink{cfg: cfg}, nil
}

// NewSFTPSinkWithClient wraps an already connected client, writing under remoteDir.
func NewSFTPSinkWithClient(client *sftp.Client, remoteDir string) *SFTPSink {
	if remoteDir == "" {
		remoteDir = "/"
	}
	return &SFTPSink{cfg: shared.SFTPConfig{RemoteDir: remoteDir}, client: client}
}

func (s *SFTPSink) Locate(name string) string {
	return path.Join(s.cfg.RemoteDir, name)
}

func (s *SFTPSink) Open(ctx context.Context, name string) (io.WriteCloser, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	if err := client.MkdirAll(s.cfg.RemoteDir); err != nil {
		return nil, fmt.Errorf("sftp: mkdir %s: %w", s.cfg.RemoteDir, err)
	}

	f, err := client.Create(s.Locate(name))
	if err != nil {
		return nil, fmt.Errorf("sftp: create remote file: %w", err)
	}
	return f, nil
}

// Close releases the SFTP session and the SSH connection, if one was dialed.
func (s *SFTPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.client != nil {
		err = s.client.Close()
		s.client = nil
	}
	if s.ssh != nil {
		if cerr := s.ssh.Close(); err == nil {
			err = cerr
		}
		s.ssh = nil
	}
	return err
}

func (s *SFTPSink) connect(ctx context.Context) (*sftp.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sftp: dial canceled: %w", err)
	}

	hostKeys, err := s.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	sshCfg := &ssh.ClientConfig{
		User:            s.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(s.cfg.Password)},
		HostKeyCallback: hostKeys,
		Timeout:         20 * time.Second,
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("sftp: dial %s: %w", addr, r.err)
		}
		sshClient = r.client
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("sftp: new client: %w", err)
	}

	s.ssh = sshClient
	s.client = client
	return client, nil
}

func (s *SFTPSink) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if s.cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	file := s.cfg.KnownHosts
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: cannot locate known_hosts: %v", shared.ErrSinkNotReady, err)
		}
		file = filepath.Join(home, ".ssh", "known_hosts")
	}

	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("%w: known_hosts %s: %v", shared.ErrSinkNotReady, file, err)
	}
	return cb, nil
}
