package main

import (
	"context"
	"fmt"
	"github.com/dzfranklin/bus2sqlite"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func usageAndDie() {
	fmt.Println("Example usage:\n" +
		"    bus2sqlite\n" +
		"    bus2sqlite --config bus2sqlite.yml --out database.sqlite\n" +
		"    bus2sqlite --skip-fetch --clip-feature zone1.json\n" +
		"    bus2sqlite --export database.sqlite --out dump/")
	pflag.PrintDefaults()
	os.Exit(1)
}

func main() {
	configPath := pflag.StringP("config", "c", "", "YAML config file")
	envFile := pflag.String("env-file", ".env", "Load BUS2SQLITE_* variables from this file if it exists")
	exportPath := pflag.StringP("export", "e", "", "Dump a snapshot's tables to CSV instead of building")

	output := pflag.StringP("out", "o", "", "Path to publish the snapshot to (or the directory for --export)")
	workDir := pflag.StringP("work-dir", "w", "", "Directory for feed files and relative paths")
	stopsURL := pflag.String("stops-url", "", "Bus stops feed URL")
	sequencesURL := pflag.String("sequences-url", "", "Bus sequences feed URL")
	skipFetch := pflag.Bool("skip-fetch", false, "Build from feed files already in the work dir")
	fetchTimeout := pflag.Duration("fetch-timeout", 0, "Per-request fetch timeout (0 waits forever)")
	allowOutOfGrid := pflag.Bool("allow-out-of-grid", false, "Keep stops outside the National Grid instead of failing")
	clipFeature := pflag.String("clip-feature", "", "Only keep stops inside the GeoJSON feature in this file")
	checkLinks := pflag.Bool("check-links", false, "Report route links that reference unknown stops")
	metricsTextfile := pflag.String("metrics-textfile", "", "Write Prometheus metrics to this file after publishing")
	quiet := pflag.BoolP("quiet", "q", false, "Don't report per-row progress")

	pflag.Usage = usageAndDie
	pflag.Parse()
	if pflag.NArg() > 0 {
		usageAndDie()
	}

	runID := uuid.New().String()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)).With("run", runID))

	if *exportPath != "" {
		if *output == "" {
			usageAndDie()
		}
		if err := bus2sqlite.Export(*exportPath, *output); err != nil {
			fmt.Printf("Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("All done")
		return
	}

	cfg, err := bus2sqlite.LoadConfig(*configPath, *envFile)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	flags := pflag.CommandLine
	setIfChanged(flags, "out", &cfg.Output, *output)
	setIfChanged(flags, "work-dir", &cfg.WorkDir, *workDir)
	setIfChanged(flags, "stops-url", &cfg.StopsURL, *stopsURL)
	setIfChanged(flags, "sequences-url", &cfg.SequencesURL, *sequencesURL)
	setIfChanged(flags, "skip-fetch", &cfg.SkipFetch, *skipFetch)
	setIfChanged(flags, "fetch-timeout", &cfg.FetchTimeout, *fetchTimeout)
	setIfChanged(flags, "allow-out-of-grid", &cfg.AllowOutOfGrid, *allowOutOfGrid)
	setIfChanged(flags, "clip-feature", &cfg.ClipFeature, *clipFeature)
	setIfChanged(flags, "check-links", &cfg.CheckLinks, *checkLinks)
	setIfChanged(flags, "metrics-textfile", &cfg.MetricsTextfile, *metricsTextfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &bus2sqlite.RunOpts{}
	if !*quiet {
		opts.Progress = bus2sqlite.LogProgress
	}

	if _, err := bus2sqlite.Run(ctx, cfg, opts); err != nil {
		fmt.Printf("Error: %s\n", err)
		stop()
		os.Exit(1)
	}
	fmt.Println("Complete")
}

// setIfChanged lets explicit flags override the config file and environment.
func setIfChanged[T any](flags *pflag.FlagSet, name string, dst *T, value T) {
	if flags.Changed(name) {
		*dst = value
	}
}
