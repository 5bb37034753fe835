package bus2sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

var ErrFetchStatus = errors.New("unexpected HTTP status")

// Fetch downloads url to path. The body is written to a sibling temp file
// and renamed into place once complete, so path never holds a partial body.
func Fetch(ctx context.Context, client *http.Client, url, path string) (err error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s: %s", ErrFetchStatus, url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
		}
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	err = tmp.Close()
	tmp = nil
	if err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("Got %s (%d bytes)", path, n))
	return nil
}

// FetchFeeds downloads the stops feed and then the sequences feed.
func FetchFeeds(ctx context.Context, client *http.Client, cfg *Config) error {
	if err := Fetch(ctx, client, cfg.StopsURL, cfg.StopsPath()); err != nil {
		return fmt.Errorf("fetch bus stops: %w", err)
	}
	if err := Fetch(ctx, client, cfg.SequencesURL, cfg.SequencesPath()); err != nil {
		return fmt.Errorf("fetch bus sequences: %w", err)
	}
	return nil
}
