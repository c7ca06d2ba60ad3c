package auth

import (
	"net/url"
	"strings"
)

// OriginPolicy decides which web-app origins may start a login and receive
// the post-login redirect.
//
// Allow-list entries are either full origins (scheme://host[:port], matched
// exactly) or host patterns containing a single "*". The wildcard matches one
// or more ASCII digits and nothing else, e.g. tenant*.app.local matches
// tenant7.app.local but not tenant-x.app.local. A pattern entry given with a
// scheme only matches origins using that scheme. This policy is deliberately
// narrow; matching arbitrary globs would silently widen the trusted set.
type OriginPolicy struct {
	exact    map[string]struct{}
	patterns []hostPattern
}

type hostPattern struct {
	scheme string
	prefix string
	suffix string
}

// NewOriginPolicy builds a policy from allow-list entries. Entries with more
// than one wildcard are ignored.
func NewOriginPolicy(entries []string) *OriginPolicy {
	p := &OriginPolicy{exact: make(map[string]struct{})}
	for _, entry := range entries {
		entry = strings.TrimSuffix(strings.TrimSpace(entry), "/")
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "*") {
			host := entry
			var scheme string
			if i := strings.Index(host, "://"); i >= 0 {
				scheme = strings.ToLower(host[:i])
				host = host[i+3:]
			}
			prefix, suffix, _ := strings.Cut(host, "*")
			if strings.Contains(suffix, "*") {
				continue
			}
			p.patterns = append(p.patterns, hostPattern{
				scheme: scheme,
				prefix: strings.ToLower(prefix),
				suffix: strings.ToLower(suffix),
			})
			continue
		}

		p.exact[strings.ToLower(entry)] = struct{}{}
	}
	return p
}

// Allows reports whether the given origin (scheme://host[:port]) is trusted.
func (p *OriginPolicy) Allows(origin string) bool {
	origin = strings.TrimSuffix(strings.TrimSpace(origin), "/")
	if origin == "" {
		return false
	}

	if _, ok := p.exact[strings.ToLower(origin)]; ok {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Host)
	for _, pattern := range p.patterns {
		if pattern.matches(scheme, host) {
			return true
		}
	}
	return false
}

// matches checks host against prefix + digits + suffix. The wildcard segment
// must be non-empty and numeric. A pattern carrying a scheme requires it.
func (p hostPattern) matches(scheme, host string) bool {
	if p.scheme != "" && scheme != p.scheme {
		return false
	}
	if len(host) <= len(p.prefix)+len(p.suffix) {
		return false
	}
	if !strings.HasPrefix(host, p.prefix) || !strings.HasSuffix(host, p.suffix) {
		return false
	}

	middle := host[len(p.prefix) : len(host)-len(p.suffix)]
	for i := 0; i < len(middle); i++ {
		if middle[i] < '0' || middle[i] > '9' {
			return false
		}
	}
	return true
}
