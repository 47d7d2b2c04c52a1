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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"testing"

	"github.com/dimkr/twitlinks/cfg"
	"github.com/dimkr/twitlinks/export"
	"github.com/dimkr/twitlinks/redirect"
	"github.com/dimkr/twitlinks/tweet"
	"github.com/stretchr/testify/assert"
)

type testResponse struct {
	Location string
	Error    error
}

type testClient struct {
	sync.Mutex
	Data     map[string]testResponse
	Requests []string
}

func (c *testClient) Do(r *http.Request) (*http.Response, error) {
	url := r.URL.String()

	c.Lock()
	defer c.Unlock()

	resp, ok := c.Data[url]
	if !ok {
		panic("No response for " + url)
	}
	c.Requests = append(c.Requests, url)

	if resp.Error != nil {
		return nil, resp.Error
	}

	h := http.Header{}
	if resp.Location != "" {
		h.Set("Location", resp.Location)
		return &http.Response{StatusCode: http.StatusMovedPermanently, Header: h}, nil
	}

	return &http.Response{StatusCode: http.StatusOK, Header: h}, nil
}

type testWriter struct {
	Tweets   []string
	Links    []export.Link
	Mentions []string
	Hashtags []string
	Err      error
}

func (w *testWriter) WriteTweet(_ context.Context, t tweet.Tweet) error {
	w.Tweets = append(w.Tweets, t.ID)
	return nil
}

func (w *testWriter) WriteLink(_ context.Context, l export.Link) error {
	if w.Err != nil {
		return w.Err
	}
	w.Links = append(w.Links, l)
	return nil
}

func (w *testWriter) WriteMention(_ context.Context, tweetID, mention string) error {
	w.Mentions = append(w.Mentions, tweetID+":"+mention)
	return nil
}

func (w *testWriter) WriteHashtag(_ context.Context, tweetID, hashtag string) error {
	w.Hashtags = append(w.Hashtags, tweetID+":"+hashtag)
	return nil
}

func (w *testWriter) Close() error {
	return nil
}

func newTestProcessor(client redirect.Client) *Processor {
	var cfg cfg.Config
	cfg.FillDefaults()

	return &Processor{
		Config: &cfg,
		Cache:  redirect.NewCache(redirect.NewResolver(nil, &cfg, client), nil),
	}
}

func newTestTweet(id, text string) tweet.Tweet {
	return tweet.New([]string{"", "https://twitter.com/a/status/" + id, text})
}

var testTweets = []tweet.Tweet{
	newTestTweet("1", "see https://t.co/a and https://t.co/b @bob #go"),
	newTestTweet("2", "again https://t.co/a https://t.co/m"),
}

func newTestData() map[string]testResponse {
	return map[string]testResponse{
		"https://t.co/a":                         {Location: "https://example.com/a"},
		"https://example.com/a":                  {},
		"https://t.co/b":                         {Error: errors.New("connection refused")},
		"https://t.co/m":                         {Location: "https://twitter.com/a/status/2/photo/1"},
		"https://twitter.com/a/status/2/photo/1": {},
	}
}

func TestProcess_WritesInOrder(t *testing.T) {
	assert := assert.New(t)

	client := &testClient{Data: newTestData()}
	p := newTestProcessor(client)

	var w testWriter
	stats, err := p.Process(context.Background(), slog.Default(), testTweets, &w)
	assert.NoError(err)

	assert.Equal([]string{"1", "2"}, w.Tweets)
	assert.Equal(
		[]export.Link{
			{TweetID: "1", Target: "https://example.com/a", Original: "https://t.co/a", Status: "ok"},
			{TweetID: "1", Target: "", Original: "https://t.co/b", Status: "network-error"},
			{TweetID: "2", Target: "https://example.com/a", Original: "https://t.co/a", Status: "ok"},
			{TweetID: "2", Target: "<embedded photo media>", Original: "https://t.co/m", Status: "ok"},
		},
		w.Links,
	)
	assert.Equal([]string{"1:bob"}, w.Mentions)
	assert.Equal([]string{"1:go"}, w.Hashtags)

	assert.Equal(2, stats.Tweets)
	assert.Equal(4, stats.Links)
	assert.Equal(3, stats.Unique)
	assert.Equal(3, stats.Resolved)
	assert.Equal(1, stats.Media)
	assert.Equal(0, stats.Cached)
	assert.Equal(map[redirect.Reason]int{redirect.ReasonNetworkError: 1}, stats.Failures)
}

func TestProcess_ResolvesEachLinkOnce(t *testing.T) {
	assert := assert.New(t)

	client := &testClient{Data: newTestData()}
	p := newTestProcessor(client)

	_, err := p.Process(context.Background(), slog.Default(), testTweets, &testWriter{})
	assert.NoError(err)

	slices.Sort(client.Requests)
	assert.Equal(
		[]string{
			"https://example.com/a",
			"https://t.co/a",
			"https://t.co/b",
			"https://t.co/m",
			"https://twitter.com/a/status/2/photo/1",
		},
		client.Requests,
	)

	stats, err := p.Process(context.Background(), slog.Default(), testTweets, &testWriter{})
	assert.NoError(err)
	assert.Equal(3, stats.Cached)
	assert.Len(client.Requests, 5)
}

func TestProcess_NoLinks(t *testing.T) {
	assert := assert.New(t)

	p := newTestProcessor(&testClient{})

	var w testWriter
	stats, err := p.Process(context.Background(), slog.Default(), []tweet.Tweet{newTestTweet("3", "nothing here")}, &w)
	assert.NoError(err)
	assert.Equal([]string{"3"}, w.Tweets)
	assert.Empty(w.Links)
	assert.Equal(0, stats.Links)
}

func TestProcess_WriterError(t *testing.T) {
	assert := assert.New(t)

	p := newTestProcessor(&testClient{Data: newTestData()})

	failure := errors.New("disk full")
	_, err := p.Process(context.Background(), slog.Default(), testTweets, &testWriter{Err: failure})
	assert.ErrorIs(err, failure)
}

func TestProcess_Cancelled(t *testing.T) {
	assert := assert.New(t)

	client := &testClient{Data: newTestData()}
	p := newTestProcessor(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var w testWriter
	stats, err := p.Process(ctx, slog.Default(), testTweets, &w)
	assert.ErrorIs(err, ErrCancelled)
	assert.ErrorIs(err, context.Canceled)

	assert.Empty(client.Requests)
	assert.Len(w.Links, 4)
	for _, l := range w.Links {
		assert.Equal("network-error", l.Status)
		assert.Empty(l.Target)
	}
	assert.Equal(4, stats.Failures[redirect.ReasonNetworkError])
}

func TestStats_Summary(t *testing.T) {
	stats := Stats{
		Tweets:   2,
		Links:    7,
		Unique:   5,
		Cached:   1,
		Resolved: 4,
		Media:    1,
		Failures: map[redirect.Reason]int{
			redirect.ReasonMalformedLocation: 1,
			redirect.ReasonLimitExceeded:     2,
		},
	}

	assert.Equal(
		t,
		[]string{
			"2 tweets processed",
			"7 links found, 5 unique",
			"4 links resolved",
			"1 links served from cache",
			"1 links pointed to embedded media",
			"2 links exceeded redirect limit",
			"1 links had a malformed redirect location",
		},
		stats.Summary(),
	)
}

func TestStats_Add(t *testing.T) {
	assert := assert.New(t)

	var total Stats
	total.Add(&Stats{Tweets: 1, Links: 2, Failures: map[redirect.Reason]int{redirect.ReasonNetworkError: 1}})
	total.Add(&Stats{Tweets: 3, Links: 1, Failures: map[redirect.Reason]int{redirect.ReasonNetworkError: 2}})

	assert.Equal(4, total.Tweets)
	assert.Equal(3, total.Links)
	assert.Equal(3, total.Failures[redirect.ReasonNetworkError])
}

func TestStats_Chart(t *testing.T) {
	stats := Stats{
		Resolved: 16,
		Failures: map[redirect.Reason]int{
			redirect.ReasonLimitExceeded: 8,
		},
	}

	assert.Equal(
		t,
		"ok                 ████████         16\n"+
			"limit-exceeded     ████              8\n"+
			"network-error                        0\n"+
			"malformed-location                   0\n"+
			"invalid-uri                          0\n"+
			"blocked-host                         0\n",
		stats.Chart(),
	)
}
