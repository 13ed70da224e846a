package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"listings-aggregator/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleProperties() []models.Property {
	return []models.Property{
		{Location: "Downtown", Type: "Apartment", Price: 300000, Size: 80},
		{Location: "Suburbs", Type: "House", Price: 750000, Size: 200},
		{Location: "City Center", Type: "Apartment", Price: 450000, Size: 120},
		{Location: "Outskirts", Type: "House", Price: 1200000, Size: 250},
		{Location: "Urban", Type: "Apartment", Price: 200000, Size: 60},
	}
}

func locations(ps []models.Property) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Location)
	}
	return out
}

func TestAveragePrice(t *testing.T) {
	assert.Equal(t, 0.0, NewAggregator(nil).AveragePrice())
	assert.Equal(t, 580000.0, NewAggregator(sampleProperties()).AveragePrice())
}

func TestFilterByTypeIgnoresCase(t *testing.T) {
	a := NewAggregator(sampleProperties())

	for _, typ := range []string{"apartment", "APARTMENT", "Apartment"} {
		got := a.FilterByType(typ)
		assert.Equal(t, []string{"Downtown", "City Center", "Urban"}, locations(got), "type %q", typ)
	}

	none := a.FilterByType("Castle")
	require.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLargestBySize(t *testing.T) {
	a := NewAggregator(sampleProperties())
	p, ok := a.LargestBySize()
	require.True(t, ok)
	assert.Equal(t, "Outskirts", p.Location)
	assert.Equal(t, "House", p.Type)

	_, ok = NewAggregator(nil).LargestBySize()
	assert.False(t, ok)
}

func TestLargestBySizeTieKeepsFirst(t *testing.T) {
	a := NewAggregator([]models.Property{
		{Location: "A", Size: 10},
		{Location: "B", Size: 90},
		{Location: "C", Size: 90},
	})
	p, ok := a.LargestBySize()
	require.True(t, ok)
	assert.Equal(t, "B", p.Location)
}

func TestGroupByPriceRange(t *testing.T) {
	groups := NewAggregator(sampleProperties()).GroupByPriceRange()

	require.Len(t, groups, 3)
	assert.Equal(t, []string{"Downtown", "City Center", "Urban"}, locations(groups[models.RangeLow]))
	assert.Equal(t, []string{"Suburbs"}, locations(groups[models.RangeMid]))
	assert.Equal(t, []string{"Outskirts"}, locations(groups[models.RangeHigh]))
}

func TestGroupByPriceRangeBoundaries(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, models.RangeLow},
		{500000, models.RangeLow},
		{500000.5, models.RangeMid},
		{1000000, models.RangeMid},
		{1000000.01, models.RangeHigh},
	}

	for _, tt := range tests {
		groups := NewAggregator([]models.Property{{Location: "X", Price: tt.price}}).GroupByPriceRange()
		assert.Len(t, groups[tt.want], 1, "price %.2f should land in %s", tt.price, tt.want)
	}
}

func TestGroupByPriceRangeEmpty(t *testing.T) {
	groups := NewAggregator(nil).GroupByPriceRange()
	for _, label := range models.PriceRanges {
		v, ok := groups[label]
		assert.True(t, ok, "label %s missing", label)
		assert.Empty(t, v)
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	a := NewAggregator(sampleProperties())

	assert.Equal(t, a.AveragePrice(), a.AveragePrice())
	assert.Equal(t, a.FilterByType("house"), a.FilterByType("house"))
	first, _ := a.LargestBySize()
	second, _ := a.LargestBySize()
	assert.Equal(t, first, second)
	assert.Equal(t, a.GroupByPriceRange(), a.GroupByPriceRange())
}

func TestConstructorCopiesInput(t *testing.T) {
	initial := sampleProperties()
	a := NewAggregator(initial)
	initial[0].Price = 1

	assert.Equal(t, 580000.0, a.AveragePrice())
}

func TestFetchNewListingsAppends(t *testing.T) {
	a := NewAggregator(sampleProperties(), WithLatency(10*time.Millisecond))
	incoming := []models.Property{
		{Location: "New Area", Type: "House", Price: 600000, Size: 180},
		{Location: "Modern District", Type: "Apartment", Price: 900000, Size: 150},
	}

	f := a.FetchNewListings(context.Background(), incoming)
	require.NoError(t, f.Wait())

	want := append(sampleProperties(), incoming...)
	assert.Equal(t, want, a.Snapshot())
	assert.Equal(t, 7, a.Len())
	assert.Len(t, a.FilterByType("apartment"), 4)
	assert.Equal(t, []string{"Suburbs", "New Area", "Modern District"}, locations(a.GroupByPriceRange()[models.RangeMid]))
}

func TestFetchNewListingsNotVisibleBeforeMerge(t *testing.T) {
	a := NewAggregator(sampleProperties(), WithLatency(200*time.Millisecond))
	apartments := a.FilterByType("apartment")
	groups := a.GroupByPriceRange()

	f := a.FetchNewListings(context.Background(), []models.Property{
		{Location: "Late", Type: "Apartment", Price: 1, Size: 999},
	})

	assert.Nil(t, f.Err())
	assert.Equal(t, 5, a.Len())
	assert.Equal(t, 580000.0, a.AveragePrice())
	largest, _ := a.LargestBySize()
	assert.Equal(t, "Outskirts", largest.Location)

	require.NoError(t, f.Wait())
	assert.Equal(t, 6, a.Len())
	largest, _ = a.LargestBySize()
	assert.Equal(t, "Late", largest.Location)

	// results handed out before the merge keep their contents
	assert.Equal(t, []string{"Downtown", "City Center", "Urban"}, locations(apartments))
	assert.Equal(t, []string{"Downtown", "City Center", "Urban"}, locations(groups[models.RangeLow]))
	assert.Len(t, a.GroupByPriceRange()[models.RangeLow], 4)
}

func TestFetchNewListingsCancelled(t *testing.T) {
	a := NewAggregator(sampleProperties(), WithLatency(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	f := a.FetchNewListings(ctx, []models.Property{{Location: "Never"}})
	cancel()

	err := f.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimedOperationInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, sampleProperties(), a.Snapshot())
}

func TestFetchNewListingsAppliesInCallOrder(t *testing.T) {
	a := NewAggregator(nil, WithLatency(20*time.Millisecond))

	var fetches []*Fetch
	for _, loc := range []string{"first", "second", "third"} {
		fetches = append(fetches, a.FetchNewListings(context.Background(), []models.Property{{Location: loc}}))
	}
	for _, f := range fetches {
		require.NoError(t, f.Wait())
	}

	assert.Equal(t, []string{"first", "second", "third"}, locations(a.Snapshot()))
}

func TestFetchAfterInterruptedPredecessor(t *testing.T) {
	a := NewAggregator(nil, WithLatency(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	dropped := a.FetchNewListings(ctx, []models.Property{{Location: "dropped"}})
	cancel()
	kept := a.FetchNewListings(context.Background(), []models.Property{{Location: "kept"}})

	assert.ErrorIs(t, dropped.Wait(), ErrTimedOperationInterrupted)
	require.NoError(t, kept.Wait())
	assert.Equal(t, []string{"kept"}, locations(a.Snapshot()))
}

func TestConcurrentReadersDuringFetch(t *testing.T) {
	a := NewAggregator(sampleProperties(), WithLatency(20*time.Millisecond))
	f := a.FetchNewListings(context.Background(), sampleProperties())

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]bool)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				// the read following a closed Done is guaranteed to see the merge
				var finished bool
				select {
				case <-f.Done():
					finished = true
				default:
				}

				r := a.Report("apartment")
				n := r.TotalListings
				if n != 5 && n != 10 {
					t.Errorf("partial merge observed: %d listings", n)
					return
				}
				if len(r.Filtered) != n*3/5 {
					t.Errorf("report mixes snapshots: %d listings, %d apartments", n, len(r.Filtered))
					return
				}

				mu.Lock()
				seen[n] = true
				mu.Unlock()

				if finished {
					return
				}
			}
		}()
	}
	wg.Wait()

	require.NoError(t, f.Wait())
	assert.True(t, seen[5], "no read before the merge")
	assert.True(t, seen[10], "no read after the merge")
	assert.Equal(t, 580000.0, a.AveragePrice())
	assert.Equal(t, 10, a.Len())
}

func TestReportUsesOneSnapshot(t *testing.T) {
	r := NewAggregator(sampleProperties()).Report("house")

	assert.Equal(t, 5, r.TotalListings)
	assert.Equal(t, 580000.0, r.AveragePrice)
	assert.Equal(t, []string{"Suburbs", "Outskirts"}, locations(r.Filtered))
	require.NotNil(t, r.Largest)
	assert.Equal(t, "Outskirts", r.Largest.Location)
	assert.Len(t, r.ByPriceRange, 3)

	empty := NewAggregator(nil).Report("house")
	assert.Nil(t, empty.Largest)
	assert.Zero(t, empty.AveragePrice)
}
