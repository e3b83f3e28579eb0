package antivirus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dutchcoders/go-clamd"
	"go.uber.org/zap"

	"file-vault-api/config"
)

var ErrScan = errors.New("antivirus scan error")

// Verdict is the one-shot scan result for a streamed object.
type Verdict struct {
	Infected    bool
	Description string
}

// Client speaks the clamd INSTREAM protocol: the object's bytes are relayed
// to the daemon as they pass through and a single verdict comes back.
type Client struct {
	logger *zap.Logger
	clam   *clamd.Clamd

	mu      sync.Mutex
	version string
}

func New(ctx context.Context, logger *zap.Logger, cfg config.Clam) (*Client, error) {
	c := clamd.NewClamd(cfg.Address)
	if err := c.Ping(); err != nil {
		return nil, fmt.Errorf("clamd ping %s: %w", cfg.Address, err)
	}

	logger.Info("clamd connected successfully", zap.String("address", cfg.Address))

	return &Client{
		logger: logger,
		clam:   c,
	}, nil
}

// Scan feeds the reader to clamd and blocks until the verdict arrives. The
// reader is always drained fully so an interposed tee keeps flowing.
func (c *Client) Scan(ctx context.Context, r io.Reader) (Verdict, error) {
	abort := make(chan bool)
	defer close(abort)

	results, err := c.clam.ScanStream(r, abort)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrScan, err)
	}

	for {
		select {
		case res, ok := <-results:
			if !ok {
				return Verdict{}, fmt.Errorf("%w: no verdict from clamd", ErrScan)
			}
			switch res.Status {
			case clamd.RES_OK:
				return Verdict{Infected: false}, nil
			case clamd.RES_FOUND:
				return Verdict{Infected: true, Description: res.Description}, nil
			default:
				return Verdict{}, fmt.Errorf("%w: %s", ErrScan, res.Raw)
			}
		case <-ctx.Done():
			return Verdict{}, fmt.Errorf("%w: %v", ErrScan, ctx.Err())
		}
	}
}

// Version returns the signature database version string, cached after the
// first successful call.
func (c *Client) Version(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != "" {
		return c.version, nil
	}

	results, err := c.clam.Version()
	if err != nil {
		return "", fmt.Errorf("clamd version: %w", err)
	}
	for res := range results {
		if v := strings.TrimSpace(res.Raw); v != "" {
			c.version = v
		}
	}

	return c.version, nil
}
