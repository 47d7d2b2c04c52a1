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

// Package batch resolves the links in a batch of tweets and writes the results.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dimkr/twitlinks/cfg"
	"github.com/dimkr/twitlinks/data"
	"github.com/dimkr/twitlinks/export"
	"github.com/dimkr/twitlinks/logcontext"
	"github.com/dimkr/twitlinks/redirect"
	"github.com/dimkr/twitlinks/tweet"
	"golang.org/x/sync/semaphore"
)

// Processor resolves links in tweets and writes tweets, links, mentions and hashtags.
type Processor struct {
	Config *cfg.Config
	Cache  *redirect.Cache
}

// ErrCancelled is returned when a batch is interrupted; links not resolved before that are written as failures.
var ErrCancelled = errors.New("batch cancelled")

type resolved struct {
	mu      sync.Mutex
	results map[string]redirect.Result
	cached  int
}

func (p *Processor) resolve(ctx context.Context, log *slog.Logger, links []string) (map[string]redirect.Result, int) {
	r := resolved{results: make(map[string]redirect.Result, len(links))}

	sem := semaphore.NewWeighted(int64(p.Config.Workers))
	var wg sync.WaitGroup

	for _, link := range links {
		if ctx.Err() != nil {
			break
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Go(func() {
			defer sem.Release(1)

			res, cached := p.Cache.Resolve(ctx, log, link)
			if !res.OK() {
				log.WarnContext(ctx, "Failed to resolve link", "link", link, "reason", res.Reason, "requests", res.Requests, "error", res.Err)
			} else {
				log.DebugContext(ctx, "Resolved link", "link", link, "target", res.URL, "requests", res.Requests, "cached", cached)
			}

			r.mu.Lock()
			r.results[link] = res
			if cached {
				r.cached++
			}
			r.mu.Unlock()
		})
	}

	wg.Wait()

	// links skipped after cancellation
	if err := ctx.Err(); err != nil {
		for _, link := range links {
			if _, ok := r.results[link]; !ok {
				r.results[link] = redirect.Result{Reason: redirect.ReasonNetworkError, Err: err}
			}
		}
	}

	return r.results, r.cached
}

// Process resolves all links in tweets, then writes everything to w in the order of tweets.
//
// A link that cannot be resolved is written with an empty target and its failure reason. An error is returned only if
// w fails, or if ctx is cancelled.
func (p *Processor) Process(ctx context.Context, log *slog.Logger, tweets []tweet.Tweet, w export.Writer) (*Stats, error) {
	stats := Stats{Tweets: len(tweets), Failures: map[redirect.Reason]int{}}

	unique := data.OrderedMap[string, struct{}]{}
	links := make([][]string, len(tweets))
	for i, t := range tweets {
		links[i] = tweet.Links(p.Config, t.Text)
		for _, link := range links[i] {
			unique.Store(link, struct{}{})
		}
		stats.Links += len(links[i])
	}
	stats.Unique = len(unique)

	log.InfoContext(ctx, "Resolving links", "tweets", len(tweets), "links", stats.Links, "unique", stats.Unique)

	results, cached := p.resolve(ctx, log, unique.Keys())
	stats.Cached = cached

	for i, t := range tweets {
		tweetCtx := logcontext.Add(ctx, "tweet", t.ID)

		if err := w.WriteTweet(tweetCtx, t); err != nil {
			return &stats, fmt.Errorf("failed to write tweet %s: %w", t.ID, err)
		}

		for _, link := range links[i] {
			res := results[link]
			target := res.Target()

			if res.OK() {
				stats.Resolved++
				if placeholder, ok := tweet.EmbeddedMedia(p.Config, target); ok {
					target = placeholder
					stats.Media++
				}
			} else {
				stats.fail(res.Reason)
			}

			if err := w.WriteLink(tweetCtx, export.Link{
				TweetID:  t.ID,
				Target:   target,
				Original: link,
				Status:   res.Status(),
			}); err != nil {
				return &stats, fmt.Errorf("failed to write %s: %w", link, err)
			}
		}

		for _, mention := range tweet.Mentions(p.Config, t.Text) {
			if err := w.WriteMention(tweetCtx, t.ID, mention); err != nil {
				return &stats, fmt.Errorf("failed to write mention of %s: %w", mention, err)
			}
		}

		for _, hashtag := range tweet.Hashtags(p.Config, t.Text) {
			if err := w.WriteHashtag(tweetCtx, t.ID, hashtag); err != nil {
				return &stats, fmt.Errorf("failed to write hashtag %s: %w", hashtag, err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return &stats, errors.Join(ErrCancelled, err)
	}

	return &stats, nil
}
