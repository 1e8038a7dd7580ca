package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlane/careerfair/internal/domain"
)

func rev(id, company string) domain.Review {
	return domain.Review{
		ID:          id,
		CompanyName: company,
		Rating:      4,
		CreatedAt:   time.Now().UTC(),
	}
}

func feedIDs(f *Feed) []string {
	reviews := f.Reviews()
	out := make([]string, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.ID)
	}
	return out
}

func TestFeedResetSeedsSeenSet(t *testing.T) {
	f := New("")
	f.Reset([]domain.Review{rev("r1", "Garmin"), rev("r2", "Workiva")})

	// A streamed copy of a review already in the initial page must not be
	// shown twice, whichever arrives first.
	assert.False(t, f.ApplyInsert(rev("r1", "Garmin")))
	assert.Equal(t, 2, f.Len())
}

func TestFeedApplyInsertPrepends(t *testing.T) {
	f := New("")
	f.Reset([]domain.Review{rev("r1", "Garmin")})

	require.True(t, f.ApplyInsert(rev("r2", "Workiva")))
	assert.Equal(t, []string{"r2", "r1"}, feedIDs(f))
}

func TestFeedApplyInsertFiltersByQuery(t *testing.T) {
	f := New("garmin")
	f.Reset(nil)

	assert.True(t, f.ApplyInsert(rev("r1", "Garmin")))
	assert.False(t, f.ApplyInsert(rev("r2", "Workiva")))
	assert.Equal(t, []string{"r1"}, feedIDs(f))
}

func TestFeedDuplicateStreamEventsNeverGrowTheList(t *testing.T) {
	f := New("")
	f.Reset(nil)

	for i := 0; i < 5; i++ {
		f.ApplyInsert(rev("r1", "Garmin"))
	}
	assert.Equal(t, 1, f.Len())
}

func TestFeedApplyUpdateAndDelete(t *testing.T) {
	f := New("")
	f.Reset([]domain.Review{rev("r1", "Garmin"), rev("r2", "Workiva")})

	updated := rev("r1", "Garmin")
	updated.Comment = "edited"
	require.True(t, f.ApplyUpdate(updated))
	assert.Equal(t, "edited", f.Reviews()[0].Comment)

	require.True(t, f.ApplyDelete("r1"))
	assert.Equal(t, []string{"r2"}, feedIDs(f))
	assert.False(t, f.ApplyDelete("r1"), "second delete is a no-op")

	// A late streamed copy of the deleted review must not resurrect it.
	assert.False(t, f.ApplyInsert(rev("r1", "Garmin")))
}

func TestFeedGenerationDiscardsStaleEvents(t *testing.T) {
	f := New("")
	f.Reset(nil)

	gen := f.Generation()

	// Query change re-fetches and resets, bumping the generation.
	fetch := func(ctx context.Context, query string) ([]domain.Review, error) {
		return []domain.Review{rev("fresh", "Workiva")}, nil
	}
	require.NoError(t, f.SetQuery(context.Background(), "workiva", fetch))

	// An event captured before the reset is stale and must be dropped.
	assert.False(t, f.ApplyInsertAt(gen, rev("stale", "Workiva")))
	assert.Equal(t, []string{"fresh"}, feedIDs(f))

	// An event at the current generation applies normally.
	assert.True(t, f.ApplyInsertAt(f.Generation(), rev("new", "Workiva West")))
}

func TestFeedSetQueryFetchError(t *testing.T) {
	f := New("")
	f.Reset([]domain.Review{rev("r1", "Garmin")})

	fetch := func(ctx context.Context, query string) ([]domain.Review, error) {
		return nil, errors.New("store down")
	}
	err := f.SetQuery(context.Background(), "workiva", fetch)
	require.Error(t, err)

	// The old contents stay intact when the re-fetch fails.
	assert.Equal(t, []string{"r1"}, feedIDs(f))
}

func TestFeedDedupProperty(t *testing.T) {
	// Whatever interleaving of page contents and streamed events, every ID
	// appears at most once.
	f := New("")
	page := make([]domain.Review, 0, 10)
	for i := 0; i < 10; i++ {
		page = append(page, rev(fmt.Sprintf("r%d", i), "Garmin"))
	}
	f.Reset(page)

	for i := 0; i < 20; i++ {
		f.ApplyInsert(rev(fmt.Sprintf("r%d", i%15), "Garmin"))
	}

	counts := make(map[string]int)
	for _, id := range feedIDs(f) {
		counts[id]++
	}
	for id, n := range counts {
		assert.Equal(t, 1, n, "id %s appeared %d times", id, n)
	}
	assert.Equal(t, 15, f.Len())
}
