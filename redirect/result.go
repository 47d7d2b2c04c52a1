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
	"errors"
	"net/url"
)

// Reason explains why a link could not be resolved.
type Reason string

const (
	// ReasonLimitExceeded means the redirect budget was exhausted: probably a loop.
	ReasonLimitExceeded Reason = "limit-exceeded"

	// ReasonNetworkError means a request failed: DNS, connection, TLS or timeout.
	ReasonNetworkError Reason = "network-error"

	// ReasonMalformedLocation means a Location header could not be turned into an absolute URL.
	ReasonMalformedLocation Reason = "malformed-location"

	// ReasonInvalidURI means the link itself is not an absolute http or https URL.
	ReasonInvalidURI Reason = "invalid-uri"

	// ReasonBlockedHost means a host in the chain is blocked, so no request was sent to it.
	ReasonBlockedHost Reason = "blocked-host"
)

var (
	ErrLimitExceeded     = errors.New("redirect limit exceeded")
	ErrMalformedLocation = errors.New("malformed location")
	ErrInvalidURI        = errors.New("invalid URI")
	ErrBlockedHost       = errors.New("host is blocked")
)

// Result is the outcome of resolving a link.
//
// If Reason is empty, URL is the final location. Otherwise, Err describes the failure.
// Budget is the redirect budget the link was resolved with.
type Result struct {
	URL      *url.URL
	Chain    []*url.URL
	Requests int
	Budget   int
	Reason   Reason
	Err      error
}

// OK determines if the link was resolved.
func (r Result) OK() bool {
	return r.Reason == ""
}

// Target returns the final location or an empty string if the link wasn't resolved.
func (r Result) Target() string {
	if r.Reason != "" || r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Status returns "ok" or the failure reason.
func (r Result) Status() string {
	if r.Reason == "" {
		return "ok"
	}
	return string(r.Reason)
}
