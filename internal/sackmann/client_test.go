package sackmann

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, files map[string]string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch body, ok := files[r.URL.Path[1:]]; {
		case r.URL.Path == "/broken.csv":
			w.WriteHeader(http.StatusInternalServerError)
		case !ok:
			http.NotFound(w, r)
		default:
			w.Write([]byte(body))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFiles(t *testing.T) {
	got := Files(2019, 2020, false)
	assert.Equal(t, []string{"atp_matches_2019.csv", "atp_matches_2020.csv", PlayersFile}, got)

	got = Files(2020, 2020, true)
	assert.Len(t, got, 6)
	assert.Contains(t, got, "atp_rankings_current.csv")
}

func TestSync(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, map[string]string{
		"a.csv": "alpha",
		"b.csv": "beta",
	}, &hits)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("local"), 0o644))

	c := NewClient(srv.URL, nil)
	res, err := c.Sync(context.Background(), dir, []string{"a.csv", "b.csv", "gone.csv"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.csv"}, res.Downloaded)
	assert.Equal(t, []string{"b.csv"}, res.Skipped)
	assert.Equal(t, []string{"gone.csv"}, res.Missing)
	assert.EqualValues(t, 2, hits.Load(), "existing files are not requested")

	data, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	_, err = os.Stat(filepath.Join(dir, "gone.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncServerError(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, nil, &hits)

	dir := t.TempDir()
	_, err := NewClient(srv.URL, nil).Sync(context.Background(), dir, []string{"broken.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")

	_, err = os.Stat(filepath.Join(dir, "broken.csv"))
	assert.True(t, os.IsNotExist(err), "failed downloads leave no file behind")
}

func TestDownloadCanceled(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, map[string]string{"a.csv": "alpha"}, &hits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewClient(srv.URL, nil).Download(ctx, "a.csv", filepath.Join(t.TempDir(), "a.csv"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, hits.Load())
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", nil)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, "http://x/", NewClient("http://x", nil).baseURL)
}
