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
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dimkr/twitlinks/cfg"
	"golang.org/x/time/rate"
)

// ThrottledClient is a [Client] that limits the rate of requests to each host.
type ThrottledClient struct {
	Client
	limit    rate.Limit
	burst    int
	lock     sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottledClient wraps a [Client] with per-host rate limiting.
func NewThrottledClient(cfg *cfg.Config, client Client) *ThrottledClient {
	return &ThrottledClient{
		Client:   client,
		limit:    rate.Limit(cfg.HostRequestsPerSecond),
		burst:    cfg.HostBurst,
		limiters: map[string]*rate.Limiter{},
	}
}

func (c *ThrottledClient) limiter(host string) *rate.Limiter {
	host = strings.ToLower(host)

	c.lock.Lock()
	defer c.lock.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[host] = l
	}

	return l
}

// Do waits until the request's host can be contacted, then sends the request.
func (c *ThrottledClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter(req.URL.Hostname()).Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", req.URL.Host, err)
	}

	return c.Client.Do(req)
}
