// Package bloom provides probabilistic de-duplication of anomaly reports.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/coursegrab/crawl"
)

// Ensure Filter implements crawl.AnomalyFilter at compile time.
var _ crawl.AnomalyFilter = (*Filter)(nil)

// Filter remembers keys in a Bloom filter. A false positive suppresses a
// report that was never made; a key is never reported twice.
type Filter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected keys
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Seen reports whether key was probably seen before and records it.
func (f *Filter) Seen(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys recorded.
func (f *Filter) EstimatedCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint(f.f.ApproximatedSize())
}
