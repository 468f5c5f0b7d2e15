// Package redis is a small RESP2 client covering the commands the worker
// needs to fan events out: PING and PUBLISH over a single shared connection.
package redis

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 5 * time.Second

// Client serializes commands over one lazily dialed connection. A broken
// connection is dropped and redialed on the next command.
type Client struct {
	addr   string
	dialer net.Dialer

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

// NewClient accepts host:port or a redis:// URL.
func NewClient(addr string) (*Client, error) {
	resolved, err := resolveAddr(addr)
	if err != nil {
		return nil, err
	}
	return &Client{addr: resolved}, nil
}

// Addr returns the resolved host:port.
func (c *Client) Addr() string { return c.addr }

// Do sends one command and waits for its reply. Error replies are returned
// as errors.
func (c *Client) Do(ctx context.Context, args ...string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConn(ctx); err != nil {
		return Reply{}, err
	}

	if err := c.conn.SetDeadline(deadlineFromContext(ctx)); err != nil {
		c.reset()
		return Reply{}, err
	}

	if err := writeCommand(c.writer, args); err != nil {
		c.reset()
		return Reply{}, err
	}
	if err := c.writer.Flush(); err != nil {
		c.reset()
		return Reply{}, fmt.Errorf("redis flush: %w", err)
	}

	reply, err := readReply(c.reader)
	if err != nil {
		if shouldReset(err) {
			c.reset()
		}
		return Reply{}, err
	}
	if reply.Type == '-' {
		return Reply{}, fmt.Errorf("redis error: %s", reply.Text)
	}

	_ = c.conn.SetDeadline(time.Time{})
	return reply, nil
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	reply, err := c.Do(ctx, "PING")
	if err != nil {
		return err
	}
	if !strings.EqualFold(reply.Text, "PONG") {
		return fmt.Errorf("unexpected ping reply: %q", reply.Text)
	}
	return nil
}

// Publish sends payload to channel and returns the number of subscribers
// that received it.
func (c *Client) Publish(ctx context.Context, channel, payload string) (int64, error) {
	reply, err := c.Do(ctx, "PUBLISH", channel, payload)
	if err != nil {
		return 0, err
	}
	return reply.Int()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reset()
}

func (c *Client) ensureConn(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("redis dial: %w", err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.writer = bufio.NewWriter(conn)
	return nil
}

func (c *Client) reset() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	c.writer = nil
	return err
}

func deadlineFromContext(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(defaultTimeout)
}

func resolveAddr(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", errors.New("redis address required")
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		u, err := url.Parse(addr)
		if err != nil {
			return "", fmt.Errorf("invalid redis url: %w", err)
		}
		if u.Host == "" {
			return "", fmt.Errorf("redis url missing host")
		}
		return u.Host, nil
	}
	return addr, nil
}

func shouldReset(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
