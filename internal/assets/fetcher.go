package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/fsutil"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/retry"
)

const (
	defaultUserAgent    = "pes-updater"
	defaultFetchTimeout = 15 * time.Second
	defaultAttempts     = 3
	defaultDelay        = 5 * time.Second
)

// FetcherConfig wires a Fetcher. Zero values fall back to the defaults.
type FetcherConfig struct {
	HTTPClient *http.Client
	Attempts   int
	Delay      time.Duration
	UserAgent  string
	Logger     *slog.Logger
}

// Fetcher downloads one URL to one file, retrying with a fixed delay.
type Fetcher struct {
	client    *http.Client
	policy    retry.Policy
	userAgent string
	logger    *slog.Logger
}

// NewFetcher constructs a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	delay := cfg.Delay
	if delay < 0 {
		delay = defaultDelay
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Fetcher{
		client:    client,
		policy:    retry.Constant(attempts, delay).Named("asset_download", nil),
		userAgent: ua,
		logger:    cfg.Logger,
	}
}

// Fetch streams url into dest, creating parent directories. It returns false
// once every attempt has failed; a partial file from the last attempt may be
// left behind.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) bool {
	err := retry.Do(ctx, f.policy, func(ctx context.Context, attempt int) error {
		if err := f.download(ctx, url, dest); err != nil {
			logging.Warn(f.logger, "asset download attempt failed",
				logging.FieldURL, url,
				logging.FieldAttempt, attempt,
				logging.FieldMaxAttempts, f.policy.MaxAttempts,
				"error", err,
			)
			return err
		}
		return nil
	})
	if err != nil {
		logging.Error(f.logger, "asset download failed", err, logging.FieldURL, url, logging.FieldPath, dest)
		return false
	}
	logging.Debug(f.logger, "asset downloaded", logging.FieldURL, url, logging.FieldPath, dest)
	return true
}

func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := fsutil.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	return errors.Join(copyErr, closeErr)
}
