// Package sackmann downloads the public tennis_atp CSV files into a local
// data directory.
package sackmann

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pable/go-tennis-features/internal/loader"
)

const (
	// DefaultBaseURL is the raw-content root of the tennis_atp repository.
	DefaultBaseURL = "https://raw.githubusercontent.com/JeffSackmann/tennis_atp/master/"

	requestTimeout = 60 * time.Second
	rateLimitDelay = 200 * time.Millisecond
	maxParallel    = 4
)

// ErrNotFound is returned by Download when the server has no such file.
var ErrNotFound = errors.New("file not found")

// Client is a rate-limited downloader for the tennis_atp files.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient returns a Client fetching from baseURL, or DefaultBaseURL when
// baseURL is empty. A nil logger discards output.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if baseURL[len(baseURL)-1] != '/' {
		baseURL += "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		logger:      logger,
	}
}

// PlayersFile is the player registry published alongside the match files.
const PlayersFile = "atp_players.csv"

// Files lists the files needed for seasons yearFrom..yearTo: one match file
// per season, the ranking files when withRankings is set, and the player
// registry.
func Files(yearFrom, yearTo int, withRankings bool) []string {
	var names []string
	for y := yearFrom; y <= yearTo; y++ {
		names = append(names, loader.MatchFile(y))
	}
	if withRankings {
		names = append(names, loader.RankingFiles...)
	}
	return append(names, PlayersFile)
}

// Result reports what Sync did with each file.
type Result struct {
	Downloaded []string
	Skipped    []string // already present
	Missing    []string // not on the server
}

// Sync downloads names into dir, leaving files that already exist alone.
// Files the server does not have are reported in Result.Missing rather than
// failing the sync.
func (c *Client) Sync(ctx context.Context, dir string, names []string) (Result, error) {
	var res Result
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("create data dir: %w", err)
	}

	status := make([]int, len(names))
	const (
		downloaded = iota
		skipped
		missing
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, name := range names {
		dst := filepath.Join(dir, name)
		if _, err := os.Stat(dst); err == nil {
			status[i] = skipped
			continue
		}
		g.Go(func() error {
			err := c.Download(ctx, name, dst)
			switch {
			case errors.Is(err, ErrNotFound):
				c.logger.Warn("not on server", zap.String("file", name))
				status[i] = missing
				return nil
			case err != nil:
				return err
			}
			c.logger.Info("downloaded", zap.String("file", name))
			status[i] = downloaded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for i, name := range names {
		switch status[i] {
		case downloaded:
			res.Downloaded = append(res.Downloaded, name)
		case skipped:
			res.Skipped = append(res.Skipped, name)
		case missing:
			res.Missing = append(res.Missing, name)
		}
	}
	return res, nil
}

// Download fetches one file to dst. The body is written to a temporary file
// in the same directory and renamed into place once complete.
func (c *Client) Download(ctx context.Context, name, dst string) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	url := c.baseURL + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "go-tennis-features/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("GET %s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
