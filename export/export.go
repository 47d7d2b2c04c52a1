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

// Package export writes tweets, resolved links, mentions and hashtags.
package export

import (
	"context"
	"errors"

	"github.com/dimkr/twitlinks/tweet"
)

const (
	TweetsSheet   = "From Twitter"
	LinksSheet    = "Links"
	MentionsSheet = "Mentions"
	HashtagsSheet = "Hashtags"
)

var (
	LinksColumns    = []string{"Tweet id", "link", "original", "status"}
	MentionsColumns = []string{"Tweet id", "mention"}
	HashtagsColumns = []string{"Tweet id", "hashtag"}
)

// Link is a link found in a tweet.
//
// Target is empty if the link could not be resolved, and Status explains why.
type Link struct {
	TweetID  string `json:"tweet"`
	Target   string `json:"link"`
	Original string `json:"original"`
	Status   string `json:"status"`
}

func (l Link) row() []string {
	return []string{l.TweetID, l.Target, l.Original, l.Status}
}

// Writer writes the results of processing tweets.
type Writer interface {
	WriteTweet(context.Context, tweet.Tweet) error
	WriteLink(context.Context, Link) error
	WriteMention(ctx context.Context, tweetID, mention string) error
	WriteHashtag(ctx context.Context, tweetID, hashtag string) error
	Close() error
}

// Multi is a [Writer] that writes to multiple writers.
type Multi []Writer

func (m Multi) WriteTweet(ctx context.Context, t tweet.Tweet) error {
	for _, w := range m {
		if err := w.WriteTweet(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) WriteLink(ctx context.Context, l Link) error {
	for _, w := range m {
		if err := w.WriteLink(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) WriteMention(ctx context.Context, tweetID, mention string) error {
	for _, w := range m {
		if err := w.WriteMention(ctx, tweetID, mention); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) WriteHashtag(ctx context.Context, tweetID, hashtag string) error {
	for _, w := range m {
		if err := w.WriteHashtag(ctx, tweetID, hashtag); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all writers, even if some fail.
func (m Multi) Close() error {
	var errs []error
	for _, w := range m {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
