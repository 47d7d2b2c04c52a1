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

// Package data stores resolved links in a SQLite database.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/dimkr/twitlinks/cfg"
	"github.com/dimkr/twitlinks/dbx"
	"github.com/dimkr/twitlinks/redirect"
)

// LinkStore is a persistent cache of [redirect.Result] values, keyed by the original link.
type LinkStore struct {
	Config *cfg.Config
	DB     *sql.DB
}

type linkRow struct {
	Original string
	Target   string
	Reason   string
	Requests int
	Budget   int
}

// reusable determines if resolving the link again with a budget of maxRedirects would produce the same result.
func (r *linkRow) reusable(maxRedirects int) bool {
	switch redirect.Reason(r.Reason) {
	case redirect.ReasonLimitExceeded:
		return r.Budget >= maxRedirects

	case redirect.ReasonBlockedHost:
		// the blocked host would have been the next request
		return r.Requests < maxRedirects

	default:
		return r.Requests <= maxRedirects
	}
}

// Save stores the result of resolving a link.
func (s *LinkStore) Save(ctx context.Context, link string, res redirect.Result) error {
	if _, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO links(original, target, reason, requests, budget, updated) VALUES ($1, $2, $3, $4, $5, UNIXEPOCH()) ON CONFLICT(original) DO UPDATE SET target = $2, reason = $3, requests = $4, budget = $5, updated = UNIXEPOCH()`,
		link,
		res.Target(),
		string(res.Reason),
		res.Requests,
		res.Budget,
	); err != nil {
		return fmt.Errorf("failed to save %s: %w", link, err)
	}

	return nil
}

// Load returns all links that were resolved recently enough.
//
// Successfully resolved links expire after ResolverCacheTTL and failures expire after ResolverRetryInterval.
// Links resolved with a different MaxRedirects are skipped if the result could differ.
func (s *LinkStore) Load(ctx context.Context, log *slog.Logger) (map[string]redirect.Result, error) {
	now := time.Now()

	rows, err := dbx.QueryCollect[linkRow](
		ctx,
		s.DB,
		`SELECT original, target, reason, requests, budget FROM links WHERE (reason = '' AND updated > $1) OR (reason != '' AND updated > $2)`,
		now.Add(-s.Config.ResolverCacheTTL).Unix(),
		now.Add(-s.Config.ResolverRetryInterval).Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached links: %w", err)
	}

	results := make(map[string]redirect.Result, len(rows))
	maxRedirects := *s.Config.MaxRedirects

	for _, row := range rows {
		if !row.reusable(maxRedirects) {
			log.DebugContext(ctx, "Ignoring cached link resolved with another budget", "link", row.Original, "budget", row.Budget, "requests", row.Requests, "max", maxRedirects)
			continue
		}

		if row.Reason != "" {
			results[row.Original] = redirect.Result{
				Requests: row.Requests,
				Budget:   row.Budget,
				Reason:   redirect.Reason(row.Reason),
				Err:      fmt.Errorf("cannot resolve %s: cached %s", row.Original, row.Reason),
			}
			continue
		}

		target, err := url.Parse(row.Target)
		if err != nil {
			log.WarnContext(ctx, "Ignoring invalid cached link", "link", row.Original, "target", row.Target, "error", err)
			continue
		}

		results[row.Original] = redirect.Result{URL: target, Requests: row.Requests, Budget: row.Budget}
	}

	log.DebugContext(ctx, "Loaded cached links", "count", len(results))
	return results, nil
}
