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

// Package cfg defines the twitlinks configuration file format and defaults.
package cfg

import (
	"regexp"
	"time"
)

// Config represents a twitlinks configuration file.
type Config struct {
	DatabaseOptions string

	Encoding string

	MaxRedirects       *int
	InsecureSkipVerify bool
	UserAgent          string

	RequestTimeout  time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration

	HostRequestsPerSecond float64
	HostBurst             int

	Workers             int
	MaxResolverRequests int

	ResolverCacheTTL      time.Duration
	ResolverRetryInterval time.Duration

	BlockListReloadDelay time.Duration

	LinkRegex            string
	CompiledLinkRegex    *regexp.Regexp `json:"-" yaml:"-"`
	MentionRegex         string
	CompiledMentionRegex *regexp.Regexp `json:"-" yaml:"-"`
	HashtagRegex         string
	CompiledHashtagRegex *regexp.Regexp `json:"-" yaml:"-"`
	MediaRegex           string
	CompiledMediaRegex   *regexp.Regexp `json:"-" yaml:"-"`

	AMQPQueue string
}

var defaultMaxRedirects = 5

// FillDefaults replaces missing or invalid settings with defaults.
func (c *Config) FillDefaults() {
	if c.DatabaseOptions == "" {
		c.DatabaseOptions = "_journal_mode=WAL&_synchronous=1&_busy_timeout=5000"
	}

	if c.Encoding == "" {
		c.Encoding = "UTF-8"
	}

	// 0 is valid and means no link is ever followed
	if c.MaxRedirects == nil || *c.MaxRedirects < 0 {
		maxRedirects := defaultMaxRedirects
		c.MaxRedirects = &maxRedirects
	}

	if c.UserAgent == "" {
		c.UserAgent = "twitlinks/1.0"
	}

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = time.Second * 10
	}

	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 128
	}

	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = time.Minute
	}

	if c.HostRequestsPerSecond <= 0 {
		c.HostRequestsPerSecond = 5
	}

	if c.HostBurst <= 0 {
		c.HostBurst = 3
	}

	if c.Workers <= 0 {
		c.Workers = 8
	}

	if c.MaxResolverRequests <= 0 {
		c.MaxResolverRequests = 16
	}

	if c.ResolverCacheTTL <= 0 {
		c.ResolverCacheTTL = time.Hour * 24 * 30
	}

	if c.ResolverRetryInterval <= 0 {
		c.ResolverRetryInterval = time.Hour * 6
	}

	if c.BlockListReloadDelay <= 0 {
		c.BlockListReloadDelay = time.Second * 5
	}

	if c.LinkRegex == "" {
		c.LinkRegex = `https?://t\.co/\w+`
	}

	c.CompiledLinkRegex = regexp.MustCompile(c.LinkRegex)

	if c.MentionRegex == "" {
		c.MentionRegex = `@(\w{1,15})`
	}

	c.CompiledMentionRegex = regexp.MustCompile(c.MentionRegex)

	if c.HashtagRegex == "" {
		c.HashtagRegex = `#(\w+)`
	}

	c.CompiledHashtagRegex = regexp.MustCompile(c.HashtagRegex)

	if c.MediaRegex == "" {
		c.MediaRegex = `^https?://twitter\.com/.+/[0-9]+/(.+)/`
	}

	c.CompiledMediaRegex = regexp.MustCompile(c.MediaRegex)

	if c.AMQPQueue == "" {
		c.AMQPQueue = "twitlinks"
	}
}
