package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"listings-aggregator/models"
	"listings-aggregator/utils"
)

// DefaultFetchLatency is the simulated round trip of FetchNewListings.
const DefaultFetchLatency = 1000 * time.Millisecond

// ErrTimedOperationInterrupted is returned by a Fetch whose context was
// cancelled before the merge was applied.
var ErrTimedOperationInterrupted = errors.New("timed operation interrupted")

// Aggregator owns an ordered collection of properties and answers aggregate
// queries over it. The collection is copy-on-write: a merge swaps in a new
// slice, so a snapshot handed out earlier is never modified.
type Aggregator struct {
	logger  *utils.Logger
	latency time.Duration

	mu         sync.RWMutex
	properties []models.Property

	// tail is closed once the most recently issued fetch has finished.
	seqMu sync.Mutex
	tail  chan struct{}
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLatency overrides the simulated fetch latency.
func WithLatency(d time.Duration) Option {
	return func(a *Aggregator) { a.latency = d }
}

// WithLogger attaches a logger.
func WithLogger(l *utils.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates an Aggregator holding a copy of initial.
func NewAggregator(initial []models.Property, opts ...Option) *Aggregator {
	a := &Aggregator{
		logger:     utils.NewNopLogger(),
		latency:    DefaultFetchLatency,
		properties: append(make([]models.Property, 0, len(initial)), initial...),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) snapshot() []models.Property {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.properties
}

// Snapshot returns a copy of the current collection.
func (a *Aggregator) Snapshot() []models.Property {
	s := a.snapshot()
	return append(make([]models.Property, 0, len(s)), s...)
}

// Len returns the number of properties currently held.
func (a *Aggregator) Len() int {
	return len(a.snapshot())
}

// AveragePrice returns the mean price, or 0 for an empty collection.
func (a *Aggregator) AveragePrice() float64 {
	return averagePrice(a.snapshot())
}

// FilterByType returns every property whose type matches t, ignoring case.
func (a *Aggregator) FilterByType(t string) []models.Property {
	return filterByType(a.snapshot(), t)
}

// LargestBySize returns the property with the greatest size. On ties the
// earliest one wins. ok is false when the collection is empty.
func (a *Aggregator) LargestBySize() (p models.Property, ok bool) {
	return largestBySize(a.snapshot())
}

// GroupByPriceRange partitions the collection into the three fixed price
// ranges. Every label is present in the result, even when empty.
func (a *Aggregator) GroupByPriceRange() map[string][]models.Property {
	return groupByPriceRange(a.snapshot())
}

// Report runs every query against a single snapshot.
func (a *Aggregator) Report(filterType string) *models.Report {
	s := a.snapshot()
	r := &models.Report{
		TotalListings: len(s),
		AveragePrice:  averagePrice(s),
		FilterType:    filterType,
		Filtered:      filterByType(s, filterType),
		ByPriceRange:  groupByPriceRange(s),
	}
	if p, ok := largestBySize(s); ok {
		r.Largest = &p
	}
	return r
}

func averagePrice(ps []models.Property) float64 {
	if len(ps) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps {
		total += p.Price
	}
	return total / float64(len(ps))
}

func filterByType(ps []models.Property, t string) []models.Property {
	out := make([]models.Property, 0)
	for _, p := range ps {
		if strings.EqualFold(p.Type, t) {
			out = append(out, p)
		}
	}
	return out
}

func largestBySize(ps []models.Property) (models.Property, bool) {
	if len(ps) == 0 {
		return models.Property{}, false
	}
	best := ps[0]
	for _, p := range ps[1:] {
		if p.Size > best.Size {
			best = p
		}
	}
	return best, true
}

func groupByPriceRange(ps []models.Property) map[string][]models.Property {
	groups := make(map[string][]models.Property, len(models.PriceRanges))
	for _, label := range models.PriceRanges {
		groups[label] = make([]models.Property, 0)
	}
	for _, p := range ps {
		label := models.PriceRangeOf(p.Price)
		groups[label] = append(groups[label], p)
	}
	return groups
}

// Fetch is a pending FetchNewListings call.
type Fetch struct {
	done chan struct{}
	err  error
}

// Done is closed once the fetch has either merged or been interrupted.
func (f *Fetch) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the fetch finishes and returns its error.
func (f *Fetch) Wait() error {
	<-f.done
	return f.err
}

// Err returns the fetch error, or nil while it is still pending.
func (f *Fetch) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// FetchNewListings simulates a remote fetch. It returns immediately; after the
// configured latency the listings are appended to the collection in one step.
// Fetches are applied in the order they were issued. Cancelling ctx before the
// merge leaves the collection untouched and fails the Fetch with
// ErrTimedOperationInterrupted.
func (a *Aggregator) FetchNewListings(ctx context.Context, newListings []models.Property) *Fetch {
	incoming := append(make([]models.Property, 0, len(newListings)), newListings...)
	f := &Fetch{done: make(chan struct{})}

	a.seqMu.Lock()
	prev := a.tail
	a.tail = f.done
	a.seqMu.Unlock()

	a.logger.Debug("[aggregator] Fetch scheduled: %d listings in %v", len(incoming), a.latency)
	go a.merge(ctx, f, prev, incoming)
	return f
}

func (a *Aggregator) merge(ctx context.Context, f *Fetch, prev <-chan struct{}, incoming []models.Property) {
	defer close(f.done)
	start := time.Now()

	t := time.NewTimer(a.latency)
	defer t.Stop()

	select {
	case <-ctx.Done():
		f.err = a.interrupted(ctx, "latency")
		return
	case <-t.C:
	}

	if prev != nil {
		select {
		case <-ctx.Done():
			f.err = a.interrupted(ctx, "earlier fetch")
			return
		case <-prev:
		}
	}

	a.mu.Lock()
	merged := make([]models.Property, 0, len(a.properties)+len(incoming))
	merged = append(merged, a.properties...)
	merged = append(merged, incoming...)
	a.properties = merged
	a.mu.Unlock()

	a.logger.Info("[aggregator] Merged %d new listings (total %d)", len(incoming), len(merged))
	a.logger.Elapsed("fetch-new-listings", start)
}

func (a *Aggregator) interrupted(ctx context.Context, waitingOn string) error {
	a.logger.Warn("[aggregator] Fetch interrupted while waiting on %s: %v", waitingOn, ctx.Err())
	return fmt.Errorf("%w: %w", ErrTimedOperationInterrupted, ctx.Err())
}
