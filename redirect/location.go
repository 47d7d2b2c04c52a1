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
	"net"
	"net/url"
	"strings"
)

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// escapeLocation percent-encodes bytes that servers put in Location headers but [url.Parse] rejects.
func escapeLocation(loc string) string {
	var b strings.Builder
	b.Grow(len(loc))

	for i := 0; i < len(loc); i++ {
		c := loc[i]
		switch {
		case c == '%' && i+2 < len(loc) && isHex(loc[i+1]) && isHex(loc[i+2]):
			b.WriteByte(c)
		case c <= ' ' || c >= 0x7f || c == '%' || c == '"' || c == '<' || c == '>' || c == '\\' || c == '^' || c == '`' || c == '{' || c == '|' || c == '}':
			b.WriteByte('%')
			b.WriteByte("0123456789ABCDEF"[c>>4])
			b.WriteByte("0123456789ABCDEF"[c&15])
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func parseLocation(loc string) (*url.URL, error) {
	if u, err := url.Parse(loc); err == nil {
		return u, nil
	}

	return url.Parse(escapeLocation(loc))
}

// rebase fills the components missing from a Location header using the URL of the request that returned it.
//
// Scheme, host and port are inherited separately: //other.example/x from http://cdn.example:8080/a becomes
// http://other.example:8080/x.
func rebase(current, ref *url.URL) *url.URL {
	if ref.Scheme == "" {
		if ref.Host != "" && ref.Port() == "" && current.Port() != "" {
			withPort := *ref
			withPort.Host = net.JoinHostPort(ref.Hostname(), current.Port())
			return current.ResolveReference(&withPort)
		}

		return current.ResolveReference(ref)
	}

	if ref.Host != "" {
		next := *ref
		return &next
	}

	// scheme without host, e.g. https:/final
	path := ref.Path
	if ref.Opaque != "" {
		path = ref.Opaque
	}

	next := current.ResolveReference(&url.URL{Path: path, RawQuery: ref.RawQuery, Fragment: ref.Fragment})
	next.Scheme = ref.Scheme
	return next
}
