package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/lox/towerdash/internal/models"
)

// FTPSource retrieves a pipeline export from an FTP drop box.
type FTPSource struct {
	Addr     string
	User     string
	Password string
	Path     string
	Timeout  time.Duration
}

// NewFTPSource parses ftp://[user[:pass]@]host[:port]/path. Without
// credentials it logs in anonymously.
func NewFTPSource(rawURL string) (*FTPSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse ftp url: %w", err)
	}
	if u.Scheme != "ftp" {
		return nil, fmt.Errorf("parse ftp url: unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" || u.Path == "" || u.Path == "/" {
		return nil, fmt.Errorf("parse ftp url: %q needs a host and a file path", rawURL)
	}

	s := &FTPSource{
		Addr:     u.Host,
		User:     "anonymous",
		Password: "anonymous",
		Path:     u.Path,
		Timeout:  30 * time.Second,
	}
	if u.Port() == "" {
		s.Addr = net.JoinHostPort(u.Hostname(), "21")
	}
	if u.User != nil {
		s.User = u.User.Username()
		if p, ok := u.User.Password(); ok {
			s.Password = p
		}
	}
	return s, nil
}

func (s *FTPSource) Name() string { return "ftp" }

func (s *FTPSource) Records(ctx context.Context) ([]models.TowerRecord, error) {
	conn, err := ftp.Dial(s.Addr, ftp.DialWithTimeout(s.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(s.User, s.Password); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(s.Path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(io.LimitReader(resp, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return Decode(bytes.NewReader(body), FormatFor(s.Path))
}
