// Package sift narrows raw search hits to the candidate list handed to the
// source collector: canonical-URL dedupe, per-domain caps, and dropping
// non-HTTP schemes, while preserving engine rank order.
package sift

import (
	"net/url"
	"strings"

	"github.com/hyperifyio/goanswer/internal/search"
)

// Options configures candidate filtering.
type Options struct {
	// PerDomain caps how many candidates one host may contribute. Zero means
	// the default of 3.
	PerDomain int
}

// Candidates filters results in place-order: the collector scans sequentially
// and stops at quota, so the order handed in here is the order that decides
// which pages ever get fetched.
func Candidates(results []search.Result, opt Options) []search.Result {
	perDomain := opt.PerDomain
	if perDomain <= 0 {
		perDomain = 3
	}
	domainCounts := map[string]int{}
	seenURL := map[string]struct{}{}

	out := make([]search.Result, 0, len(results))
	for _, r := range results {
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || u.Host == "" {
			continue
		}
		if !isHTTPScheme(u) {
			continue
		}
		canon := canonicalizeURL(u)
		if _, ok := seenURL[canon]; ok {
			continue
		}
		host := strings.ToLower(u.Host)
		if domainCounts[host] >= perDomain {
			continue
		}
		seenURL[canon] = struct{}{}
		domainCounts[host]++
		r.URL = canon
		out = append(out, r)
	}
	return out
}

func canonicalizeURL(u *url.URL) string {
	// drop fragments, tracking params, and default ports; lower-case host
	u2 := *u
	u2.Fragment = ""
	u2.Host = strings.ToLower(u2.Host)
	if (u2.Scheme == "http" && strings.HasSuffix(u2.Host, ":80")) || (u2.Scheme == "https" && strings.HasSuffix(u2.Host, ":443")) {
		u2.Host = u2.Hostname()
	}
	q := u2.Query()
	for _, p := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"} {
		q.Del(p)
	}
	u2.RawQuery = q.Encode()
	return u2.String()
}

func isHTTPScheme(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
