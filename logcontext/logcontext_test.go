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

package logcontext

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(Wrap(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("Failed to decode %s: %v", buf.String(), err)
	}

	return m
}

func TestWrap_AddsFields(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	log := newTestLogger(&buf)

	ctx := Add(context.Background(), "run", "abc")
	ctx = Add(ctx, "file", "tweets.csv")
	log.InfoContext(ctx, "Resolving", "link", "https://t.co/x")

	m := decode(t, &buf)
	assert.Equal("abc", m["run"])
	assert.Equal("tweets.csv", m["file"])
	assert.Equal("https://t.co/x", m["link"])
}

func TestWrap_NoFields(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	newTestLogger(&buf).InfoContext(context.Background(), "Hello")

	m := decode(t, &buf)
	assert.Equal("Hello", m["msg"])
	assert.NotContains(m, "run")
}

func TestWrap_Level(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf).DebugContext(Add(context.Background(), "run", "abc"), "Hidden")
	assert.Empty(t, buf.String())
}

func TestWrap_WithAttrs(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	log := newTestLogger(&buf).With("component", "batch")
	log.InfoContext(Add(context.Background(), "tweet", "42"), "Done")

	m := decode(t, &buf)
	assert.Equal("batch", m["component"])
	assert.Equal("42", m["tweet"])
}

func TestAdd_DoesNotModifyParent(t *testing.T) {
	assert := assert.New(t)

	parent := Add(context.Background(), "run", "abc")
	a := Add(parent, "tweet", "1")
	b := Add(parent, "tweet", "2")

	assert.Equal([]any{"run", "abc"}, parent.Value(key))
	assert.Equal([]any{"run", "abc", "tweet", "1"}, a.Value(key))
	assert.Equal([]any{"run", "abc", "tweet", "2"}, b.Value(key))
}

func TestNew_ReplacesFields(t *testing.T) {
	ctx := New(Add(context.Background(), "run", "abc"), "file", "a.csv")
	assert.Equal(t, []any{"file", "a.csv"}, ctx.Value(key))
}
