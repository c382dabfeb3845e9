package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/logger"
)

// LoadConfig configures a load run against a running server.
type LoadConfig struct {
	BaseURL string
	Workers int
	Timeout time.Duration
}

type submitRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
}

type outcome int

const (
	accepted outcome = iota
	duplicate
	failed
)

// Client submits async analysis requests over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks that the server answers on /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) submit(ctx context.Context, ref model.ContentRef) outcome {
	body, err := json.Marshal(submitRequest{ContentType: string(ref.Kind), ContentID: ref.ID})
	if err != nil {
		return failed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze/async", bytes.NewReader(body))
	if err != nil {
		return failed
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return failed
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return accepted
	case http.StatusOK:
		return duplicate
	default:
		return failed
	}
}

// Submit posts every ref to /v1/analyze/async with cfg.Workers concurrent
// requests and counts accepted, duplicate and failed submissions.
func Submit(ctx context.Context, cfg LoadConfig, refs []model.ContentRef) (Stats, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := NewClient(cfg.BaseURL, timeout)
	if err := client.Health(ctx); err != nil {
		return Stats{}, err
	}

	start := time.Now()
	var counts [3]int64
	ch := make(chan model.ContentRef, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range ch {
				atomic.AddInt64(&counts[client.submit(ctx, ref)], 1)
			}
		}()
	}

	var err error
feed:
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			err = fmt.Errorf("context cancelled during submission: %w", ctx.Err())
			break feed
		case ch <- ref:
		}
	}
	close(ch)
	wg.Wait()

	stats := Stats{
		Accepted:   int(counts[accepted]),
		Duplicates: int(counts[duplicate]),
		Failed:     int(counts[failed]),
		Duration:   time.Since(start),
	}
	stats.Submitted = stats.Accepted + stats.Duplicates + stats.Failed
	logger.Get().Info(ctx, "load run completed",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))
	return stats, err
}
