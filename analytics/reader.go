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

// Package analytics reads Twitter analytics exports.
package analytics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dimkr/twitlinks/tweet"
	"golang.org/x/net/html/charset"
)

var ErrNoHeader = errors.New("no header row")

// Path appends .csv to a file name without an extension.
func Path(name string) string {
	if filepath.Ext(name) == "" {
		return name + ".csv"
	}
	return name
}

// Decode wraps a reader with a decoder for the named encoding.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	e, name := charset.Lookup(encoding)
	if e == nil {
		return nil, fmt.Errorf("unknown encoding: %s", encoding)
	}

	if name == "utf-8" {
		return r, nil
	}

	return e.NewDecoder().Reader(r), nil
}

// Read parses an analytics export.
//
// Columns are located by name, so their order in the export does not matter.
// Columns missing from the export are left empty.
func Read(r io.Reader, encoding string) ([]tweet.Tweet, error) {
	decoded, err := Decode(r, encoding)
	if err != nil {
		return nil, err
	}

	c := csv.NewReader(decoded)
	c.FieldsPerRecord = -1
	c.LazyQuotes = true

	header, err := c.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	} else if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	indices := make([]int, len(tweet.Columns))
	for i, name := range tweet.Columns {
		indices[i] = -1
		for j, col := range header {
			if strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) == name {
				indices[i] = j
				break
			}
		}
	}

	var tweets []tweet.Tweet
	for {
		record, err := c.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(tweets)+1, err)
		}

		fields := make([]string, len(tweet.Columns))
		for i, j := range indices {
			if j >= 0 && j < len(record) {
				fields[i] = record[j]
			}
		}

		tweets = append(tweets, tweet.New(fields))
	}

	return tweets, nil
}

// ReadFile parses an analytics export file.
func ReadFile(path, encoding string) ([]tweet.Tweet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tweets, err := Read(f, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return tweets, nil
}
