package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/safeguardhq/safeguard/internal/config"
	"github.com/safeguardhq/safeguard/internal/logger"
)

// Options controls the checker trigger behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerURL provides an optional server base URL override.
	ServerURL string
	// Interval defines the time between evaluation triggers.
	Interval time.Duration
	// Once triggers a single evaluation pass and exits.
	Once bool
}

const (
	// DefaultInterval is the trigger cadence; the pass itself is idempotent
	// under any frequency, so this only bounds alert latency.
	DefaultInterval = time.Minute

	// requestTimeout bounds one trigger request.
	requestTimeout = 30 * time.Second
)

// errNoServerURL indicates missing server configuration.
var errNoServerURL = errors.New("no server URL configured")

// Run triggers the server's evaluation pass on a fixed interval and blocks
// until the context is canceled. This is the external scheduler the
// watchdog engine is designed around.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "safeguard-checker")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	// Determine server URL: command line argument overrides config.
	serverURL := cfg.ServerURL
	if opts.ServerURL != "" {
		serverURL = opts.ServerURL
	}

	if serverURL == "" {
		return errNoServerURL
	}

	client := &http.Client{Timeout: requestTimeout}
	endpoint := strings.TrimRight(serverURL, "/") + "/api/check-all"

	if opts.Once {
		return trigger(ctx, client, endpoint)
	}

	logger.InfoKV(ctx, "Triggering evaluation passes",
		"endpoint", endpoint, "interval", opts.Interval.String())

	// Setup trigger ticker with fixed interval.
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	// Main trigger loop until context cancellation.
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			if err = trigger(ctx, client, endpoint); err != nil {
				logger.ErrorKV(ctx, "Evaluation trigger failed", "error", err)
			}
		}
	}
}

// passSummary is the evaluation endpoint's response body.
type passSummary struct {
	// Status is the pass outcome marker.
	Status string `json:"status"`
	// Alerts is the number of persons alerted during the pass.
	Alerts int `json:"alerts"`
}

// trigger performs one evaluation request and logs the pass summary.
func trigger(ctx context.Context, client *http.Client, endpoint string) error {
	requestCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("trigger evaluation: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", response.StatusCode)
	}

	var summary passSummary

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err = json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if summary.Alerts > 0 {
		logger.InfoKV(ctx, "Evaluation pass dispatched alerts", "alerts", summary.Alerts)
	} else {
		logger.Debug(ctx, "Evaluation pass complete, no alerts")
	}

	return nil
}
