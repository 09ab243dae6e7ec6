// Package gsheet downloads the running log CSV from a shared Google Sheets
// document, with a short-lived file cache in the OS temp directory.
package gsheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jgehrcke/runni/internal/config"
)

const exportURLFormat = "https://docs.google.com/spreadsheet/ccc?key=%s&output=csv"

// StatusError reports a non-2xx response from the spreadsheet export
// endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spreadsheet export returned HTTP %d", e.Code)
}

type Client struct {
	docKey   string
	maxAge   time.Duration
	cacheDir string
	baseURL  string
	httpc    *http.Client
	log      *logrus.Logger
}

// NewClient fails immediately when no document key is configured, before
// any network activity.
func NewClient(cfg config.Config, log *logrus.Logger) (*Client, error) {
	if cfg.SheetKey == "" {
		return nil, fmt.Errorf("RUNNI_GSHEET_KEY is not set")
	}
	return &Client{
		docKey:   cfg.SheetKey,
		maxAge:   cfg.CacheMaxAge,
		cacheDir: os.TempDir(),
		httpc:    &http.Client{Timeout: cfg.HTTPTimeout},
		log:      log,
	}, nil
}

// CSVText returns the raw CSV export, served from the file cache while its
// mtime is younger than the configured max age. A miss performs one GET
// with no retries and overwrites the cache.
func (c *Client) CSVText(ctx context.Context) (string, error) {
	path := c.cachePath()

	if info, err := os.Stat(path); err == nil {
		if time.Since(info.ModTime()) < c.maxAge {
			data, err := os.ReadFile(path)
			if err == nil {
				c.log.Info("read data from file cache")
				return string(data), nil
			}
			c.log.Warnf("discarding unreadable cache file: %v", err)
		}
	}

	c.log.Info("read data from web")
	text, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}

	c.log.Info("write data to file cache")
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		// A failed cache write costs a re-download next time, nothing more.
		c.log.Warnf("write cache file: %v", err)
	}

	return text, nil
}

// cachePath keys the cache file on a prefix of the document key, so
// switching documents does not serve stale data.
func (c *Client) cachePath() string {
	prefix := c.docKey
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	return filepath.Join(c.cacheDir, fmt.Sprintf("runni-%s.csv.cache", prefix))
}

func (c *Client) url() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf(exportURLFormat, c.docKey)
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch spreadsheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}

// writeFileAtomic goes through a temp file and a rename, so a concurrent
// reader never sees a partially written cache file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
