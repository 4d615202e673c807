package chartcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"trade-journal-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CheckerInterface defines the interface for the chart-URL checker.
type CheckerInterface interface {
	Check(ctx context.Context, rawURL string) error
}

// Checker probes chart snapshot URLs before they are saved into the journal,
// so a typo'd TradingView link is caught while the user still has the form
// open. Probing is rate limited to stay polite to image hosts.
type Checker struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Checker implements the interface
var _ CheckerInterface = (*Checker)(nil)

// NewChecker creates a new chart-URL checker.
func NewChecker(cfg *config.ChartCheck, logger *zap.Logger) *Checker {
	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Checker{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// Check reports whether the URL looks like a chart link and answers a probe.
// It issues a HEAD request and falls back to GET for hosts that reject HEAD.
func (c *Checker) Check(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("chart URL %q is not a valid http(s) link", rawURL)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Probing chart URL", zap.String("url", rawURL))
	resp, err := c.client.R().SetContext(ctx).Head(rawURL)
	if err != nil {
		return fmt.Errorf("chart URL probe failed: %w", err)
	}

	if resp.StatusCode() == http.StatusMethodNotAllowed {
		resp, err = c.client.R().SetContext(ctx).Get(rawURL)
		if err != nil {
			return fmt.Errorf("chart URL probe failed: %w", err)
		}
	}

	if resp.IsError() {
		return fmt.Errorf("chart URL answered %s", resp.Status())
	}

	c.logger.Debug("Chart URL reachable",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode()),
	)
	return nil
}
