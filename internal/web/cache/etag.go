// Package cache implements HTTP conditional requests for schema dumps.
package cache

import (
	"net/http"
	"strings"
)

// ETag quotes a schema fingerprint as a strong entity tag
func ETag(fingerprint string) string {
	return `"` + fingerprint + `"`
}

// ParseIfNoneMatch splits an If-None-Match header into its entity tags.
// Weak tags keep their W/ prefix. Unquoted garbage is skipped.
func ParseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var etags []string
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(part)
		opaque := strings.TrimPrefix(tag, "W/")
		if len(opaque) < 2 || opaque[0] != '"' || opaque[len(opaque)-1] != '"' {
			continue
		}
		etags = append(etags, tag)
	}
	return etags
}

// MatchesETag applies the weak comparison If-None-Match requires
func MatchesETag(etag string, etags []string) bool {
	if len(etags) == 1 && etags[0] == "*" {
		return true
	}

	want := strings.TrimPrefix(etag, "W/")
	for _, e := range etags {
		if strings.TrimPrefix(e, "W/") == want {
			return true
		}
	}
	return false
}

// NotModified sets the ETag header and, when the request already holds that
// version, answers 304 and reports true.
func NotModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if MatchesETag(etag, ParseIfNoneMatch(r.Header.Get("If-None-Match"))) {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}
