// Package rcon drives the game server's remote console: one serial
// connection, a token-bucket pace between sends, and blocks-placed
// accounting recomputed from the command text.
package rcon

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gorcon "github.com/gorcon/rcon"
	"golang.org/x/time/rate"
)

// Executor is the narrow surface the build service and the CLI drive.
type Executor interface {
	Execute(ctx context.Context, cmd string) (string, error)
	Close() error
}

type Stats struct {
	SentTotal   uint64
	FailedTotal uint64
	BlocksTotal int64
}

// console is the wire under the client; gorcon provides the real one.
type console interface {
	Execute(cmd string) (string, error)
	Close() error
}

// Client paces and serializes commands over one remote console
// connection. The console protocol is not pipelined, so Execute holds
// the connection for the full round trip.
type Client struct {
	mu      sync.Mutex
	conn    console
	limiter *rate.Limiter
	logger  *log.Logger

	sentTotal   atomic.Uint64
	failedTotal atomic.Uint64
	blocksTotal atomic.Int64
}

// Dial connects and authenticates against addr.
func Dial(addr, password string, opsPerSecond int, dialTimeout time.Duration, logger *log.Logger) (*Client, error) {
	if opsPerSecond <= 0 {
		opsPerSecond = 20
	}
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	conn, err := gorcon.Dial(addr, password,
		gorcon.SetDialTimeout(dialTimeout),
		gorcon.SetDeadline(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("rcon dial %s: %w", addr, err)
	}
	c := newClient(conn, opsPerSecond, logger)
	c.printf("rcon connected addr=%s ops_per_s=%d", addr, opsPerSecond)
	return c, nil
}

func newClient(conn console, opsPerSecond int, logger *log.Logger) *Client {
	return &Client{
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(opsPerSecond), 1),
		logger:  logger,
	}
}

// Execute sends one command with the leading slash stripped; the
// console expects bare command text. The response comes back trimmed.
func (c *Client) Execute(ctx context.Context, cmd string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	resp, err := c.conn.Execute(strings.TrimPrefix(cmd, "/"))
	c.mu.Unlock()
	if err != nil {
		c.failedTotal.Add(1)
		return "", fmt.Errorf("rcon execute: %w", err)
	}
	c.sentTotal.Add(1)
	c.blocksTotal.Add(BlocksIn(cmd))
	return strings.TrimSpace(resp), nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) Stats() Stats {
	return Stats{
		SentTotal:   c.sentTotal.Load(),
		FailedTotal: c.failedTotal.Load(),
		BlocksTotal: c.blocksTotal.Load(),
	}
}

func (c *Client) printf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// BlocksIn estimates how many blocks a rendered command touches: the
// volume between a fill's corners, one for a setblock, zero for
// anything else.
func BlocksIn(cmd string) int64 {
	f := strings.Fields(strings.TrimPrefix(strings.TrimSpace(cmd), "/"))
	if len(f) == 0 {
		return 0
	}
	switch f[0] {
	case "setblock":
		return 1
	case "fill":
		if len(f) < 8 {
			return 0
		}
		var c [6]int64
		for i := 0; i < 6; i++ {
			n, err := strconv.ParseInt(f[i+1], 10, 64)
			if err != nil {
				return 0
			}
			c[i] = n
		}
		return span(c[0], c[3]) * span(c[1], c[4]) * span(c[2], c[5])
	}
	return 0
}

func span(a, b int64) int64 {
	if a > b {
		a, b = b, a
	}
	return b - a + 1
}
