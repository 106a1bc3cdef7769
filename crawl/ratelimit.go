package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/coursegrab"
	"golang.org/x/time/rate"
)

var _ coursegrab.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter paces requests per host using token buckets. The navigator
// uses it between page loads and the fetch boundary between file downloads,
// so a long run does not hammer the LMS.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing rps requests per second per
// host with the given burst. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Wait blocks until a request to domain is allowed. Host names are compared
// case-insensitively. Returns an error if ctx ends first.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	domain = strings.ToLower(domain)

	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, d.burst)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
