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

package redirect

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dimkr/twitlinks/cfg"
	"github.com/stretchr/testify/assert"
)

func TestClient_DoesNotFollowRedirects(t *testing.T) {
	assert := assert.New(t)

	var lock sync.Mutex
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		methods = append(methods, r.Method)
		lock.Unlock()
		switch r.URL.Path {
		case "/short":
			http.Redirect(w, r, "/long/page", http.StatusMovedPermanently)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	var cfg cfg.Config
	cfg.FillDefaults()

	resolver := NewResolver(nil, &cfg, NewClient(&cfg))

	res := resolver.ResolveString(context.Background(), slog.Default(), server.URL+"/short")
	assert.True(res.OK())
	assert.Equal(server.URL+"/long/page", res.Target())
	assert.Equal(2, res.Requests)
	lock.Lock()
	assert.Equal([]string{http.MethodHead, http.MethodHead}, methods)
	lock.Unlock()
}

func TestClient_VerifiesCertificates(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var cfg cfg.Config
	cfg.FillDefaults()

	resolver := NewResolver(nil, &cfg, NewClient(&cfg))

	res := resolver.ResolveString(context.Background(), slog.Default(), server.URL)
	assert.Equal(ReasonNetworkError, res.Reason)
}

func TestClient_InsecureSkipVerify(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var cfg cfg.Config
	cfg.FillDefaults()
	cfg.InsecureSkipVerify = true

	resolver := NewResolver(nil, &cfg, NewClient(&cfg))

	res := resolver.ResolveString(context.Background(), slog.Default(), server.URL)
	assert.True(res.OK())
	assert.Equal(server.URL, res.Target())
}

func TestClient_Timeout(t *testing.T) {
	assert := assert.New(t)

	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(done)

	var cfg cfg.Config
	cfg.RequestTimeout = time.Millisecond * 50
	cfg.FillDefaults()

	resolver := NewResolver(nil, &cfg, NewClient(&cfg))

	res := resolver.ResolveString(context.Background(), slog.Default(), server.URL)
	assert.Equal(ReasonNetworkError, res.Reason)
}

func TestClient_ConnectionRefused(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	var cfg cfg.Config
	cfg.FillDefaults()

	resolver := NewResolver(nil, &cfg, NewClient(&cfg))

	res := resolver.ResolveString(context.Background(), slog.Default(), addr)
	assert.Equal(ReasonNetworkError, res.Reason)
	assert.Equal(1, res.Requests)
}
