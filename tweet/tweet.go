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

// Package tweet extracts links, mentions and hashtags from tweets.
package tweet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dimkr/twitlinks/cfg"
)

// Columns are the Twitter analytics columns copied to the output, in order.
var Columns = []string{
	"Tweet id",
	"Tweet permalink",
	"Tweet text",
	"time",
	"impressions",
	"engagements",
	"engagement rate",
	"retweets",
	"replies",
	"favorites",
	"user profile clicks",
	"url clicks",
	"hashtag clicks",
	"detail expands",
	"permalink clicks",
	"embedded media views",
	"app opens",
	"app installs",
	"follows",
}

const (
	idColumn        = 0
	permalinkColumn = 1
	textColumn      = 2
)

var trailingDigits = regexp.MustCompile(`\d+$`)

// Tweet is a row of a Twitter analytics export.
type Tweet struct {
	ID     string
	Text   string
	Fields []string
}

// New creates a [Tweet] from analytics fields, ordered like [Columns].
//
// The ID is taken from the permalink because the ID column of the export is often rounded by spreadsheet software.
func New(fields []string) Tweet {
	t := Tweet{Fields: make([]string, len(Columns))}
	copy(t.Fields, fields)

	t.ID = trailingDigits.FindString(t.Fields[permalinkColumn])
	if t.ID == "" {
		t.ID = t.Fields[idColumn]
	}
	t.Fields[idColumn] = t.ID

	t.Text = strings.ReplaceAll(t.Fields[textColumn], "\r", "")
	t.Fields[textColumn] = t.Text

	return t
}

func scan(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	found := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			found = append(found, m[1])
		} else {
			found = append(found, m[0])
		}
	}

	return found
}

// Links returns all shortened links in a tweet, in order of appearance.
func Links(cfg *cfg.Config, text string) []string {
	return scan(cfg.CompiledLinkRegex, text)
}

// Mentions returns the user names mentioned in a tweet, without the @.
func Mentions(cfg *cfg.Config, text string) []string {
	return scan(cfg.CompiledMentionRegex, text)
}

// Hashtags returns the hashtags in a tweet, without the #.
func Hashtags(cfg *cfg.Config, text string) []string {
	return scan(cfg.CompiledHashtagRegex, text)
}

// EmbeddedMedia determines if a resolved link points back to media embedded in a tweet.
//
// If it does, it returns a placeholder like "<embedded photo media>".
func EmbeddedMedia(cfg *cfg.Config, target string) (string, bool) {
	m := cfg.CompiledMediaRegex.FindStringSubmatch(target)
	if m == nil {
		return "", false
	}

	kind := m[0]
	if len(m) > 1 {
		kind = m[1]
	}

	return fmt.Sprintf("<embedded %s media>", kind), true
}
