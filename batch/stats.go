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

package batch

import (
	"fmt"

	"github.com/dimkr/twitlinks/graph"
	"github.com/dimkr/twitlinks/redirect"
)

var failureMessages = []struct {
	Reason  redirect.Reason
	Message string
}{
	{redirect.ReasonLimitExceeded, "exceeded redirect limit"},
	{redirect.ReasonNetworkError, "failed due to network errors"},
	{redirect.ReasonMalformedLocation, "had a malformed redirect location"},
	{redirect.ReasonInvalidURI, "were not valid URLs"},
	{redirect.ReasonBlockedHost, "pointed to blocked hosts"},
}

// Stats counts what happened during a batch.
//
// Links, Resolved, Media and Failures count link occurrences, while Unique and Cached count distinct links.
type Stats struct {
	Tweets   int
	Links    int
	Unique   int
	Cached   int
	Resolved int
	Media    int
	Failures map[redirect.Reason]int
}

// Add adds the counters of another batch.
func (s *Stats) Add(other *Stats) {
	s.Tweets += other.Tweets
	s.Links += other.Links
	s.Unique += other.Unique
	s.Cached += other.Cached
	s.Resolved += other.Resolved
	s.Media += other.Media

	if s.Failures == nil {
		s.Failures = map[redirect.Reason]int{}
	}
	for reason, n := range other.Failures {
		s.Failures[reason] += n
	}
}

func (s *Stats) fail(reason redirect.Reason) {
	if s.Failures == nil {
		s.Failures = map[redirect.Reason]int{}
	}
	s.Failures[reason]++
}

// Summary returns a human-readable report.
func (s *Stats) Summary() []string {
	lines := []string{
		fmt.Sprintf("%d tweets processed", s.Tweets),
		fmt.Sprintf("%d links found, %d unique", s.Links, s.Unique),
		fmt.Sprintf("%d links resolved", s.Resolved),
	}

	if s.Cached > 0 {
		lines = append(lines, fmt.Sprintf("%d links served from cache", s.Cached))
	}

	if s.Media > 0 {
		lines = append(lines, fmt.Sprintf("%d links pointed to embedded media", s.Media))
	}

	known := map[redirect.Reason]struct{}{}
	for _, m := range failureMessages {
		known[m.Reason] = struct{}{}
		if n := s.Failures[m.Reason]; n > 0 {
			lines = append(lines, fmt.Sprintf("%d links %s", n, m.Message))
		}
	}

	for reason, n := range s.Failures {
		if _, ok := known[reason]; !ok && n > 0 {
			lines = append(lines, fmt.Sprintf("%d links failed: %s", n, reason))
		}
	}

	return lines
}

// Chart draws the number of resolved links and failures per reason.
func (s *Stats) Chart() string {
	keys := []string{"ok"}
	values := []int64{int64(s.Resolved)}

	for _, m := range failureMessages {
		keys = append(keys, string(m.Reason))
		values = append(values, int64(s.Failures[m.Reason]))
	}

	return graph.Bars(keys, values)
}
