/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dimkr/twitlinks/analytics"
	"github.com/dimkr/twitlinks/batch"
	"github.com/dimkr/twitlinks/cfg"
	"github.com/dimkr/twitlinks/data"
	"github.com/dimkr/twitlinks/export"
	"github.com/dimkr/twitlinks/logcontext"
	"github.com/dimkr/twitlinks/migrations"
	"github.com/dimkr/twitlinks/redirect"
	"github.com/dimkr/twitlinks/tweet"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	encoding     = flag.String("e", "", "input encoding (default: UTF-8)")
	output       = flag.String("o", "", "combine all input files into one output file")
	maxRedirects = flag.Int("r", -1, "maximum number of redirects (default: 5)")
	truncate     = flag.Bool("t", false, "truncate output files instead of appending")
	verbose      = flag.Bool("v", false, "verbose logging")
	cfgPath      = flag.String("cfg", "", "configuration file (JSON or YAML)")
	dbPath       = flag.String("db", "links.sqlite3", "link cache database path (empty to disable)")
	format       = flag.String("format", "csv", "output format: csv or xlsx")
	amqpURL      = flag.String("amqp", "", "AMQP broker URL to publish links to")
	queue        = flag.String("queue", "", "AMQP queue name")
	blockList    = flag.String("blocklist", "", "CSV list of blocked domains")
	insecure     = flag.Bool("insecure", false, "skip TLS certificate verification")
)

func outputBase(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func newWriter(cfg *cfg.Config, path string) (export.Writer, error) {
	base := outputBase(path)

	var w export.Writer
	switch *format {
	case "csv":
		csv, err := export.NewCSVWriter(base, *truncate)
		if err != nil {
			return nil, err
		}
		w = csv

	case "xlsx":
		xlsx, err := export.NewXLSXWriter(base+".xlsx", *truncate)
		if err != nil {
			return nil, err
		}
		w = xlsx

	default:
		return nil, fmt.Errorf("unknown format: %s", *format)
	}

	if *amqpURL == "" {
		return w, nil
	}

	publisher, err := export.NewAMQPWriter(*amqpURL, cfg.AMQPQueue)
	if err != nil {
		w.Close()
		return nil, err
	}

	return export.Multi{w, publisher}, nil
}

func openStore(ctx context.Context, log *slog.Logger, cfg *cfg.Config) (*data.LinkStore, map[string]redirect.Result, error) {
	db, err := sql.Open("sqlite3", *dbPath+"?"+cfg.DatabaseOptions)
	if err != nil {
		return nil, nil, err
	}

	if err := migrations.Run(ctx, log, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	gc := data.GarbageCollector{Config: cfg, DB: db}
	if n, err := gc.Run(ctx); err != nil {
		log.WarnContext(ctx, "Failed to collect garbage", "error", err)
	} else if n > 0 {
		log.InfoContext(ctx, "Deleted expired links", "count", n)
	}

	store := &data.LinkStore{Config: cfg, DB: db}

	results, err := store.Load(ctx, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	log.InfoContext(ctx, "Loaded cached links", "count", len(results))
	return store, results, nil
}

func process(ctx context.Context, log *slog.Logger, cfg *cfg.Config, p *batch.Processor, inputs []string, out string) (*batch.Stats, error) {
	var tweets []tweet.Tweet
	for _, input := range inputs {
		t, err := analytics.ReadFile(input, cfg.Encoding)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, t...)
	}

	w, err := newWriter(cfg, out)
	if err != nil {
		return nil, err
	}

	stats, err := p.Process(ctx, log, tweets, w)
	if closeErr := w.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write %s: %w", out, closeErr)
	}

	return stats, err
}

func run(ctx context.Context, log *slog.Logger, cfg *cfg.Config, files []string) (*batch.Stats, error) {
	var blocked *redirect.BlockList
	if *blockList != "" {
		var err error
		if blocked, err = redirect.NewBlockList(log, *blockList, cfg.BlockListReloadDelay); err != nil {
			return nil, err
		}
		defer blocked.Close()
	}

	client := redirect.NewThrottledClient(cfg, redirect.NewClient(cfg))
	resolver := redirect.NewResolver(blocked, cfg, client)

	var cache *redirect.Cache
	if *dbPath == "" {
		cache = redirect.NewCache(resolver, nil)
	} else {
		store, results, err := openStore(ctx, log, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", *dbPath, err)
		}
		defer store.DB.Close()

		cache = redirect.NewCache(resolver, store)
		cache.Warm(results)
	}

	p := batch.Processor{Config: cfg, Cache: cache}

	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = analytics.Path(file)
	}

	if *output != "" {
		return process(logcontext.Add(ctx, "file", *output), log, cfg, &p, paths, *output)
	}

	var total batch.Stats
	for _, path := range paths {
		stats, err := process(logcontext.Add(ctx, "file", path), log, cfg, &p, []string{path}, path)
		if stats != nil {
			total.Add(stats)
		}
		if err != nil {
			return &total, err
		}
	}

	return &total, nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file1 file2 ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	conf, err := cfg.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *encoding != "" {
		conf.Encoding = *encoding
	}
	if *maxRedirects >= 0 {
		conf.MaxRedirects = maxRedirects
	}
	if *insecure {
		conf.InsecureSkipVerify = true
	}
	if *queue != "" {
		conf.AMQPQueue = *queue
	}

	opts := slog.HandlerOptions{Level: slog.LevelInfo}
	if *verbose {
		opts.Level = slog.LevelDebug
	}
	log := slog.New(logcontext.Wrap(slog.NewJSONHandler(os.Stderr, &opts)))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logcontext.Add(ctx, "run", uuid.NewString())

	stats, err := run(ctx, log, conf, files)
	if stats != nil {
		for _, line := range stats.Summary() {
			fmt.Println(line)
		}
		if stats.Links > 0 {
			fmt.Print(stats.Chart())
		}
	}

	if errors.Is(err, batch.ErrCancelled) {
		log.WarnContext(ctx, "Interrupted")
		os.Exit(130)
	} else if err != nil {
		log.ErrorContext(ctx, "Failed to process tweets", "error", err)
		os.Exit(1)
	}
}
