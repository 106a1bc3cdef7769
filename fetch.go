package coursegrab

import (
	"context"
	"net/http"
)

// FetchOutcome is the kind of result a file fetch produced.
type FetchOutcome int

// Fetch outcomes.
const (
	FetchOK FetchOutcome = iota
	FetchSkipped
	FetchFailed
)

// String returns a short name for logs.
func (o FetchOutcome) String() string {
	switch o {
	case FetchOK:
		return "ok"
	case FetchSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// FetchResult is the decoded outcome of one fetch. Data, ContentType and
// HeaderFilename are only set when Outcome is FetchOK; Reason is only set
// otherwise.
type FetchResult struct {
	Outcome        FetchOutcome
	Data           []byte
	ContentType    string
	HeaderFilename string
	Reason         string
}

// FileFetcher is the privileged fetch boundary. It never returns a Go error:
// every failure is expressed in the response.
type FileFetcher interface {
	FetchFile(ctx context.Context, req FetchRequest) FetchResponse
}

// CookieSource supplies the session cookies of the logged-in browser for a
// given address.
type CookieSource interface {
	Cookies(ctx context.Context, url string) ([]*http.Cookie, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until a request to the given domain is allowed.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
