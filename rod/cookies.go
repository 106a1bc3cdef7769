package rod

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// toHTTPCookies converts browser cookies to net/http cookies, keeping
// those whose domain matches host. Host-only cookies keep an empty Domain.
func toHTTPCookies(cookies []*proto.NetworkCookie, host string) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range cookies {
		domain := strings.ToLower(c.Domain)
		hostOnly := !strings.HasPrefix(domain, ".")
		bare := strings.TrimPrefix(domain, ".")

		if hostOnly && bare != host {
			continue
		}
		if !hostOnly && host != bare && !strings.HasSuffix(host, "."+bare) {
			continue
		}

		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if !hostOnly {
			hc.Domain = bare
		}
		if !c.Session && c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}
