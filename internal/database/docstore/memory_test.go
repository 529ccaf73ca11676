package docstore

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/queryfeatures"
)

func seed(t *testing.T, m *Memory, c *Collection, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range n {
		d, err := m.Insert(context.Background(), c, Document{"title": fmt.Sprintf("Lot %02d", i), "price": float64(i * 10)})
		require.NoError(t, err)
		ids[i] = d.ID()
	}
	return ids
}

func runningCount(t *testing.T, m *Memory, c *Collection) int {
	t.Helper()
	plan, err := queryfeatures.Build(url.Values{"isRunning": {"true"}}, queryfeatures.DefaultOptions())
	require.NoError(t, err)
	n, err := m.Count(context.Background(), c, plan)
	require.NoError(t, err)
	return int(n)
}

func TestMemoryRunningScenario(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	ids := seed(t, m, c, 2)
	a, b := ids[0], ids[1]

	doc, err := m.ToggleExclusive(ctx, c, a, "isRunning")
	require.NoError(t, err)
	assert.True(t, doc.Bool("isRunning"))

	doc, err = m.ToggleExclusive(ctx, c, b, "isRunning")
	require.NoError(t, err)
	assert.True(t, doc.Bool("isRunning"))

	docA, err := m.FindByID(ctx, c, a)
	require.NoError(t, err)
	assert.False(t, docA.Bool("isRunning"))

	doc, err = m.ToggleExclusive(ctx, c, b, "isRunning")
	require.NoError(t, err)
	assert.False(t, doc.Bool("isRunning"))
	assert.Equal(t, 0, runningCount(t, m, c))
}

func TestMemoryToggleInvariantHolds(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	ids := seed(t, m, c, 6)
	rng := rand.New(rand.NewSource(7))

	for range 200 {
		id := ids[rng.Intn(len(ids))]
		doc, err := m.ToggleExclusive(ctx, c, id, "isRunning")
		require.NoError(t, err)
		n := runningCount(t, m, c)
		assert.LessOrEqual(t, n, 1)
		if doc.Bool("isRunning") {
			assert.Equal(t, 1, n)
		}
	}
}

func TestMemoryConcurrentTogglesKeepOneRunning(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	ids := seed(t, m, c, 8)

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ToggleExclusive(ctx, c, id, "isRunning")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, runningCount(t, m, c))
}

func TestMemoryDoubleToggleRoundTrips(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	ids := seed(t, m, c, 3)

	_, err := m.ToggleExclusive(ctx, c, ids[2], "isRunning")
	require.NoError(t, err)

	first, err := m.ToggleField(ctx, c, ids[0], "displayTitle")
	require.NoError(t, err)
	second, err := m.ToggleField(ctx, c, ids[0], "displayTitle")
	require.NoError(t, err)
	assert.NotEqual(t, first.Bool("displayTitle"), second.Bool("displayTitle"))

	// off then on again lands on the same holder
	_, err = m.ToggleExclusive(ctx, c, ids[2], "isRunning")
	require.NoError(t, err)
	doc, err := m.ToggleExclusive(ctx, c, ids[2], "isRunning")
	require.NoError(t, err)
	assert.True(t, doc.Bool("isRunning"))
	assert.Equal(t, 1, runningCount(t, m, c))
}

func TestToggleNamedFieldPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	ids := seed(t, m, c, 1)

	_, err := ToggleNamedField(ctx, m, c, ids[0], "title", "display")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "start with")

	_, err = ToggleNamedField(ctx, m, c, ids[0], "displayLogoOne", "display")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "not found in lot schema")

	doc, err := ToggleNamedField(ctx, m, c, ids[0], "displayTitle", "display")
	require.NoError(t, err)
	assert.False(t, doc.Bool("displayTitle"))

	_, err = ToggleNamedField(ctx, m, c, "3b0f5e9c-0000-4000-8000-000000000000", "displayTitle", "display")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMemoryListScenario(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	m := NewMemory().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	c := testCollection()
	for i := range 30 {
		price := 50.0
		if i < 25 {
			price = 100 + float64(i)
		}
		_, err := m.Insert(ctx, c, Document{"title": fmt.Sprintf("Lot %d", i), "price": price})
		require.NoError(t, err)
	}

	q := url.Values{"price[gte]": {"100"}, "page": {"2"}, "limit": {"10"}, "sort": {"-createdAt"}}
	plan, err := queryfeatures.Build(q, queryfeatures.DefaultOptions())
	require.NoError(t, err)

	docs, pg, err := List(ctx, m, c, plan)
	require.NoError(t, err)
	require.Len(t, docs, 10)
	assert.Equal(t, int64(25), pg.TotalCount)
	assert.EqualValues(t, 10, pg.Skip)
	assert.Equal(t, 3, pg.TotalPages)
	require.NotNil(t, pg.NextPage)
	require.NotNil(t, pg.PrevPage)
	assert.Equal(t, 3, *pg.NextPage)
	assert.Equal(t, 1, *pg.PrevPage)

	// newest first: page two starts at the 11th newest matching lot
	assert.Equal(t, "Lot 14", docs[0]["title"])
	assert.NotContains(t, docs[0], "version")
}

func TestMemoryHugePageIsEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	seed(t, m, c, 3)

	plan, err := queryfeatures.Build(url.Values{"page": {"9223372036854775807"}}, queryfeatures.DefaultOptions())
	require.NoError(t, err)

	docs, pg, err := List(ctx, m, c, plan)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 1, pg.TotalPages)
	assert.Nil(t, pg.NextPage)

	// Find on its own clamps the offset as well.
	found, err := m.Find(ctx, c, &queryfeatures.Plan{Page: -5, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestMemoryScopedPlan(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	seed(t, m, c, 4)

	plan, err := queryfeatures.Build(url.Values{}, queryfeatures.DefaultOptions())
	require.NoError(t, err)
	scoped := Scoped(plan, "title", "Lot 02")

	docs, pg, err := List(ctx, m, c, scoped)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, int64(1), pg.TotalCount)
	assert.Empty(t, plan.Filter, "Scoped must not mutate the original plan")
}

func TestMemorySearchAndProjection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	seed(t, m, c, 12)

	opts := queryfeatures.DefaultOptions()
	opts.SearchableFields = c.SearchFields
	plan, err := queryfeatures.Build(url.Values{"keyword": {"LOT 1"}, "fields": {"title"}, "sort": {"title"}}, opts)
	require.NoError(t, err)

	docs, _, err := List(ctx, m, c, plan)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, Document{"id": docs[0].ID(), "title": "Lot 10"}, docs[0])
	assert.Equal(t, "Lot 11", docs[1]["title"])
}

func TestMemoryUpdateManyWritesTrustedFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	c := testCollection()
	ids := seed(t, m, c, 3)

	n, err := m.UpdateMany(ctx, c, queryfeatures.Filter{"price": {{Op: queryfeatures.OpGte, Values: []string{"10"}}}}, Document{"isRunning": true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	doc, err := m.FindByID(ctx, c, ids[0])
	require.NoError(t, err)
	assert.False(t, doc.Bool("isRunning"))

	_, err = m.UpdateMany(ctx, c, queryfeatures.Filter{}, Document{"version": int64(9)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCloneKeepsEmptyLists(t *testing.T) {
	src := Document{"images": []string{}, "tags": []string{"a"}}
	out := src.Clone()

	require.NotNil(t, out["images"])
	assert.Equal(t, []string{}, out["images"])

	out["tags"].([]string)[0] = "b"
	assert.Equal(t, []string{"a"}, src["tags"], "lists are copied")
}
