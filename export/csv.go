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

package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/dimkr/twitlinks/tweet"
)

type csvFile struct {
	f *os.File
	w *csv.Writer
}

func openCSV(path string, truncate bool, header []string) (*csvFile, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	c := &csvFile{f: f, w: csv.NewWriter(f)}

	if st.Size() == 0 {
		if err := c.w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	}

	return c, nil
}

func (c *csvFile) close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

// CSVWriter is a [Writer] that writes four CSV files: tweets, links, mentions and hashtags.
type CSVWriter struct {
	tweets, links, mentions, hashtags *csvFile
}

// CSVPaths returns the paths of the files written by a [CSVWriter].
func CSVPaths(base string) (tweets, links, mentions, hashtags string) {
	return base + "-tweets.csv", base + "-links.csv", base + "-mentions.csv", base + "-hashtags.csv"
}

// NewCSVWriter opens or creates CSV files that start with base.
//
// If truncate is false, rows are appended to existing files.
func NewCSVWriter(base string, truncate bool) (*CSVWriter, error) {
	tweetsPath, linksPath, mentionsPath, hashtagsPath := CSVPaths(base)

	var w CSVWriter
	var err error

	if w.tweets, err = openCSV(tweetsPath, truncate, tweet.Columns); err != nil {
		return nil, err
	}

	if w.links, err = openCSV(linksPath, truncate, LinksColumns); err != nil {
		w.Close()
		return nil, err
	}

	if w.mentions, err = openCSV(mentionsPath, truncate, MentionsColumns); err != nil {
		w.Close()
		return nil, err
	}

	if w.hashtags, err = openCSV(hashtagsPath, truncate, HashtagsColumns); err != nil {
		w.Close()
		return nil, err
	}

	return &w, nil
}

func (w *CSVWriter) WriteTweet(_ context.Context, t tweet.Tweet) error {
	return w.tweets.w.Write(t.Fields)
}

func (w *CSVWriter) WriteLink(_ context.Context, l Link) error {
	return w.links.w.Write(l.row())
}

func (w *CSVWriter) WriteMention(_ context.Context, tweetID, mention string) error {
	return w.mentions.w.Write([]string{tweetID, mention})
}

func (w *CSVWriter) WriteHashtag(_ context.Context, tweetID, hashtag string) error {
	return w.hashtags.w.Write([]string{tweetID, hashtag})
}

// Close flushes and closes all files.
func (w *CSVWriter) Close() error {
	var errs []error
	for _, c := range []*csvFile{w.tweets, w.links, w.mentions, w.hashtags} {
		if c != nil {
			errs = append(errs, c.close())
		}
	}
	return errors.Join(errs...)
}
