package sift

import (
	"testing"

	"github.com/hyperifyio/goanswer/internal/search"
)

func TestCandidates_DedupesCanonicalURLs(t *testing.T) {
	in := []search.Result{
		{URL: "https://example.com/page#frag", Title: "a"},
		{URL: "https://EXAMPLE.com/page", Title: "b"},
		{URL: "https://example.com/page?utm_source=news", Title: "c"},
	}
	out := Candidates(in, Options{})
	if len(out) != 1 {
		t.Fatalf("expected 1 after dedupe, got %d", len(out))
	}
	if out[0].Title != "a" {
		t.Fatalf("first occurrence should win, got %q", out[0].Title)
	}
}

func TestCandidates_PerDomainCap(t *testing.T) {
	in := []search.Result{
		{URL: "https://example.com/1"},
		{URL: "https://example.com/2"},
		{URL: "https://example.com/3"},
		{URL: "https://other.org/1"},
	}
	out := Candidates(in, Options{PerDomain: 2})
	if len(out) != 3 {
		t.Fatalf("expected 3 (2 from example.com + 1 other), got %d", len(out))
	}
	if out[2].URL != "https://other.org/1" {
		t.Fatalf("rank order not preserved: %+v", out)
	}
}

func TestCandidates_DropsNonHTTP(t *testing.T) {
	in := []search.Result{
		{URL: "ftp://example.com/file"},
		{URL: "not a url"},
		{URL: "https://example.com/ok"},
	}
	out := Candidates(in, Options{})
	if len(out) != 1 || out[0].URL != "https://example.com/ok" {
		t.Fatalf("unexpected candidates: %+v", out)
	}
}
