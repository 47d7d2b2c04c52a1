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

// Package redirect follows HTTP redirects to find where a link leads.
package redirect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dimkr/twitlinks/cfg"
)

// Client sends HTTP requests.
//
// A Client must not follow redirects.
type Client interface {
	Do(*http.Request) (*http.Response, error)
}

// Resolver finds the final location of a link by sending HEAD requests and following Location headers.
type Resolver struct {
	Config         *cfg.Config
	BlockedDomains *BlockList
	client         Client
}

// NewResolver returns a new [Resolver].
func NewResolver(blockedDomains *BlockList, cfg *cfg.Config, client Client) *Resolver {
	return &Resolver{
		Config:         cfg,
		BlockedDomains: blockedDomains,
		client:         client,
	}
}

func isAbsolute(u *url.URL) bool {
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

// ResolveString parses a link and resolves it using the configured redirect budget.
func (r *Resolver) ResolveString(ctx context.Context, log *slog.Logger, link string) Result {
	u, err := url.Parse(link)
	if err != nil {
		return Result{Budget: *r.Config.MaxRedirects, Reason: ReasonInvalidURI, Err: fmt.Errorf("cannot resolve %s: %w: %w", link, ErrInvalidURI, err)}
	}

	return r.Resolve(ctx, log, u, *r.Config.MaxRedirects)
}

// Resolve follows redirects until a response without a Location header is received.
//
// budget is the maximum number of requests: if budget is 0, Resolve fails without sending any request.
// Every failure is reported through [Result.Reason].
func (r *Resolver) Resolve(ctx context.Context, log *slog.Logger, u *url.URL, budget int) Result {
	if u == nil || !isAbsolute(u) {
		return Result{Budget: budget, Reason: ReasonInvalidURI, Err: fmt.Errorf("cannot resolve %v: %w", u, ErrInvalidURI)}
	}

	start := *u
	current := &start
	res := Result{Chain: []*url.URL{current}, Budget: budget}

	for {
		if budget <= 0 {
			log.DebugContext(ctx, "Redirect limit exceeded", "url", start.String(), "last", current.String(), "requests", res.Requests)
			res.Reason = ReasonLimitExceeded
			res.Err = fmt.Errorf("cannot resolve %s after %d requests: %w", start.String(), res.Requests, ErrLimitExceeded)
			return res
		}

		if r.BlockedDomains != nil && r.BlockedDomains.Contains(current.Host) {
			res.Reason = ReasonBlockedHost
			res.Err = fmt.Errorf("cannot resolve %s: %s: %w", start.String(), current.Host, ErrBlockedHost)
			return res
		}

		next, err := r.follow(ctx, log, current)
		res.Requests++
		if err != nil {
			res.Err = fmt.Errorf("cannot resolve %s: %w", start.String(), err)
			if errors.Is(err, ErrMalformedLocation) {
				res.Reason = ReasonMalformedLocation
			} else {
				res.Reason = ReasonNetworkError
			}
			return res
		}

		if next == nil {
			res.URL = current
			return res
		}

		res.Chain = append(res.Chain, next)
		current = next
		budget--
	}
}

// follow sends a HEAD request and returns the rebased Location, or nil if there is none.
func (r *Resolver) follow(ctx context.Context, log *slog.Logger, u *url.URL) (*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w: %w", u.String(), ErrMalformedLocation, err)
	}
	req.Header.Set("User-Agent", r.Config.UserAgent)

	log.DebugContext(ctx, "Sending request", "url", req.URL.String())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u.String(), err)
	}
	if resp.Body != nil {
		resp.Body.Close()
	}

	loc := strings.TrimSpace(resp.Header.Get("Location"))
	if loc == "" {
		return nil, nil
	}

	ref, err := parseLocation(loc)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q in %s response: %w: %w", loc, u.String(), ErrMalformedLocation, err)
	}

	next := rebase(u, ref)
	if !isAbsolute(next) {
		return nil, fmt.Errorf("invalid location %q in %s response: %w", loc, u.String(), ErrMalformedLocation)
	}

	log.DebugContext(ctx, "Following redirect", "from", u.String(), "to", next.String(), "status", resp.StatusCode)
	return next, nil
}
