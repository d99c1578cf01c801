package scraper

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// assetExtensions lists path suffixes that are never crawled as pages.
var assetExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".pdf", ".zip", ".css", ".js",
}

// Normalize standardizes a URL for visited-set and product-set membership.
// It lowercases the scheme and host, strips any fragment, and defaults an
// empty path to "/".
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	normalizeInPlace(u)
	return u.String(), nil
}

func normalizeInPlace(u *url.URL) {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
}

// Resolve makes href absolute against base, normalized the same way a
// Normalize call would.
func Resolve(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, fmt.Errorf("parse href: %w", err)
	}
	abs := base.ResolveReference(ref)
	normalizeInPlace(abs)
	return abs, nil
}

// InScope reports whether candidate belongs to the crawl rooted at seed: the
// scheme and host must match exactly and the candidate path must live under
// the seed path on a segment boundary. A seed of https://site.com/shop
// contains /shop and /shop/hats but not /shopping or another host.
func InScope(seed, candidate *url.URL) bool {
	if seed == nil || candidate == nil {
		return false
	}
	if !strings.EqualFold(seed.Scheme, candidate.Scheme) {
		return false
	}
	if !strings.EqualFold(seed.Hostname(), candidate.Hostname()) {
		return false
	}
	prefix := strings.TrimSuffix(seed.Path, "/")
	if prefix == "" {
		return true
	}
	cp := candidate.Path
	if cp == prefix {
		return true
	}
	return strings.HasPrefix(cp, prefix+"/")
}

// IsAssetPath reports whether the URL path ends in a known static-asset
// extension. Such URLs are recorded as visited but never fetched as pages.
func IsAssetPath(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, a := range assetExtensions {
		if ext == a {
			return true
		}
	}
	return false
}
