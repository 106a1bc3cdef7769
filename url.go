package coursegrab

import (
	"net/url"
	"strings"
)

// CanonicalURL strips the fragment from a link target. The result is the
// deduplication key for candidate links.
func CanonicalURL(raw string) string {
	if i := strings.Index(raw, "#"); i != -1 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

// ForceDownloadURL rewrites a file preview address ending at prefixEnd (the
// byte offset just past "/files/<id>") into its download endpoint.
func ForceDownloadURL(canonical string, prefixEnd int) string {
	return strings.TrimRight(canonical[:prefixEnd], "/") + "/download?download_frd=1"
}

// Origin returns "scheme://host" for an absolute URL, or "" if it has none.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// SameOrigin reports whether target shares scheme and host with base.
// Path-relative references (no scheme and no host) count as same-origin.
func SameOrigin(base, target string) bool {
	t, err := url.Parse(target)
	if err != nil {
		return false
	}
	if t.Scheme == "" && t.Host == "" {
		return true
	}
	return Origin(base) != "" && Origin(base) == Origin(target)
}

// UnderPrefix reports whether address falls under prefix, ignoring trailing
// slashes, query strings and fragments. "/courses/7/files" is under
// "/courses/7" but "/courses/77" is not.
func UnderPrefix(address, prefix string) bool {
	a := strings.TrimRight(stripQuery(address), "/")
	p := strings.TrimRight(stripQuery(prefix), "/")
	if !strings.HasPrefix(a, p) {
		return false
	}
	rest := a[len(p):]
	return rest == "" || rest[0] == '/'
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i != -1 {
		return s[:i]
	}
	return s
}

// IsInternalAddress reports whether a tab address is a browser placeholder
// rather than a loaded site page.
func IsInternalAddress(address string) bool {
	a := strings.ToLower(strings.TrimSpace(address))
	switch {
	case a == "", a == "about:blank":
		return true
	case strings.HasPrefix(a, "chrome://"),
		strings.HasPrefix(a, "chrome-error://"),
		strings.HasPrefix(a, "chrome-search://"),
		strings.HasPrefix(a, "edge://"),
		strings.HasPrefix(a, "about:"),
		strings.HasPrefix(a, "data:"):
		return true
	}
	return false
}
