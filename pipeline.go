package bus2sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type RunOpts struct {
	// Client defaults to an http.Client with cfg.FetchTimeout.
	Client      *http.Client
	Transformer Transformer
	Progress    ProgressFunc
}

// Run fetches both feeds, builds a snapshot and publishes it. If any step
// fails the previously published snapshot is left untouched.
func Run(ctx context.Context, cfg *Config, opts *RunOpts) (*BuildStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &RunOpts{}
	}

	metrics := NewMetrics()

	if cfg.SkipFetch {
		slog.Info("Skipping fetch, using existing feed files")
	} else {
		client := opts.Client
		if client == nil {
			client = &http.Client{Timeout: cfg.FetchTimeout}
		}
		start := time.Now()
		if err := FetchFeeds(ctx, client, cfg); err != nil {
			return nil, err
		}
		metrics.observePhase("fetch", start)
	}

	buildOpts := &BuildOpts{
		Transformer:    opts.Transformer,
		Progress:       opts.Progress,
		AllowOutOfGrid: cfg.AllowOutOfGrid,
		CheckLinks:     cfg.CheckLinks,
	}
	if cfg.ClipFeature != "" {
		clip, err := LoadClipFeature(cfg.resolve(cfg.ClipFeature))
		if err != nil {
			return nil, err
		}
		slog.Info(fmt.Sprintf("Clipping stops to %s (%d points)", cfg.ClipFeature, clip.NumPoints()))
		buildOpts.Clip = clip
	}

	start := time.Now()
	stats, err := Build(cfg.StopsPath(), cfg.SequencesPath(), cfg.TempPath(), buildOpts)
	if err != nil {
		return nil, err
	}
	metrics.observePhase("build", start)
	metrics.observeBuild(stats)

	if err := ctx.Err(); err != nil {
		_ = removeSnapshot(cfg.TempPath())
		return nil, err
	}

	start = time.Now()
	if err := Publish(cfg.TempPath(), cfg.OutputPath()); err != nil {
		_ = removeSnapshot(cfg.TempPath())
		return nil, err
	}
	metrics.observePhase("publish", start)
	metrics.LastSuccess.SetToCurrentTime()

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.resolve(cfg.MetricsTextfile)); err != nil {
			return stats, fmt.Errorf("write metrics: %w", err)
		}
	}

	return stats, nil
}

// LogProgress is a ProgressFunc that reports to the default logger.
func LogProgress(table string, remaining int) {
	slog.Info(fmt.Sprintf("%d %s left", remaining, table))
}
