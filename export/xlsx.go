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
	"errors"
	"fmt"
	"io/fs"

	"github.com/dimkr/twitlinks/tweet"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXWriter is a [Writer] that writes a workbook with one sheet per record type.
type XLSXWriter struct {
	path string
	f    *excelize.File
	rows map[string]int
}

func (w *XLSXWriter) ensureSheet(name string, header []string) error {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return err
	}

	if idx == -1 {
		if _, err := w.f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	}

	rows, err := w.f.GetRows(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	w.rows[name] = len(rows)

	if len(rows) == 0 {
		return w.append(name, header)
	}

	return nil
}

func (w *XLSXWriter) append(sheet string, row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, w.rows[sheet]+1)
	if err != nil {
		return err
	}

	if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write to %s: %w", sheet, err)
	}

	w.rows[sheet]++
	return nil
}

// NewXLSXWriter opens or creates a workbook.
//
// If truncate is false and the workbook exists, rows are appended to its sheets.
func NewXLSXWriter(path string, truncate bool) (*XLSXWriter, error) {
	w := XLSXWriter{path: path, rows: map[string]int{}}

	fresh := truncate
	if !truncate {
		f, err := excelize.OpenFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			fresh = true
		} else if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		} else {
			w.f = f
		}
	}

	if fresh {
		w.f = excelize.NewFile()
	}

	for _, sheet := range []struct {
		Name   string
		Header []string
	}{
		{TweetsSheet, tweet.Columns},
		{LinksSheet, LinksColumns},
		{MentionsSheet, MentionsColumns},
		{HashtagsSheet, HashtagsColumns},
	} {
		if err := w.ensureSheet(sheet.Name, sheet.Header); err != nil {
			w.f.Close()
			return nil, err
		}
	}

	if fresh {
		if err := w.f.DeleteSheet(defaultSheet); err != nil {
			w.f.Close()
			return nil, err
		}
	}

	return &w, nil
}

func (w *XLSXWriter) WriteTweet(_ context.Context, t tweet.Tweet) error {
	return w.append(TweetsSheet, t.Fields)
}

func (w *XLSXWriter) WriteLink(_ context.Context, l Link) error {
	return w.append(LinksSheet, l.row())
}

func (w *XLSXWriter) WriteMention(_ context.Context, tweetID, mention string) error {
	return w.append(MentionsSheet, []string{tweetID, mention})
}

func (w *XLSXWriter) WriteHashtag(_ context.Context, tweetID, hashtag string) error {
	return w.append(HashtagsSheet, []string{tweetID, hashtag})
}

// Close saves the workbook.
func (w *XLSXWriter) Close() error {
	if idx, err := w.f.GetSheetIndex(TweetsSheet); err == nil && idx >= 0 {
		w.f.SetActiveSheet(idx)
	}

	err := w.f.SaveAs(w.path)
	if closeErr := w.f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("failed to save %s: %w", w.path, err)
	}

	return nil
}
