package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bardbit/stremio-mdblist-importer/config"
	"github.com/bardbit/stremio-mdblist-importer/mocks"
	"github.com/bardbit/stremio-mdblist-importer/models"
	"github.com/bardbit/stremio-mdblist-importer/services/mdblist"
)

func testCatalogSettings() config.CatalogSettings {
	return config.DefaultSettings().Catalog
}

func outcome(slug string, items ...models.ListItem) mdblist.SourceOutcome {
	return mdblist.SourceOutcome{Slug: slug, Items: items}
}

func TestResolveMergesInListOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)

	fetcher.EXPECT().FetchItems(gomock.Any(), "listA", "K").Return(outcome("listA",
		models.ListItem{TMDBID: "10", Type: "movie", Title: "X", Year: "2020"},
	))
	fetcher.EXPECT().FetchItems(gomock.Any(), "listB", "K").Return(outcome("listB",
		models.ListItem{TMDBID: "10", Type: "movie", Title: "X-dup"},
		models.ListItem{TMDBID: "20", Type: "series", Title: "Y"},
	))

	svc := NewService(fetcher, testCatalogSettings())
	resp := svc.Resolve(context.Background(), []string{"listA", "listB"}, "movie", "K")

	require.Len(t, resp.Metas, 1)
	assert.Equal(t, models.MetaPreview{ID: "tmdb:10", Type: "movie", Name: "X", ReleaseInfo: "2020"}, resp.Metas[0])

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"metas":[{"id":"tmdb:10","type":"movie","name":"X","releaseInfo":"2020"}]}`, string(body))

	require.Len(t, resp.Sources, 2)
	assert.Equal(t, models.SourceReport{Slug: "listA", Items: 1, Accepted: 1}, resp.Sources[0])
	assert.Equal(t, models.SourceReport{Slug: "listB", Items: 2, Accepted: 0}, resp.Sources[1])
}

func TestResolveEmptyIdentifiersMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)
	fetcher.EXPECT().FetchItems(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	svc := NewService(fetcher, testCatalogSettings())
	for _, ids := range [][]string{nil, {}, {" ", ""}} {
		resp := svc.Resolve(context.Background(), ids, "movie", "K")
		body, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Equal(t, `{"metas":[]}`, string(body))
	}
}

func TestResolveUnsupportedTypeMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)
	fetcher.EXPECT().FetchItems(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	resp := NewService(fetcher, testCatalogSettings()).Resolve(context.Background(), []string{"a"}, "tv", "K")
	assert.NotNil(t, resp.Metas)
	assert.Empty(t, resp.Metas)
}

func TestResolveFailedSourceContributesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)

	fetcher.EXPECT().FetchItems(gomock.Any(), "broken", "K").Return(mdblist.SourceOutcome{Slug: "broken", Err: errors.New("mdblist api error: 404")})
	fetcher.EXPECT().FetchItems(gomock.Any(), "good", "K").Return(outcome("good",
		models.ListItem{TMDBID: "1", Type: "series", Title: "S"},
	))

	resp := NewService(fetcher, testCatalogSettings()).Resolve(context.Background(), []string{"broken", "good"}, "series", "K")
	require.Len(t, resp.Metas, 1)
	assert.Equal(t, "tmdb:1", resp.Metas[0].ID)
	assert.Equal(t, []string{"broken"}, resp.FailedSources())
}

func TestResolveRecoversFetcherPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)

	fetcher.EXPECT().FetchItems(gomock.Any(), "boom", "K").DoAndReturn(
		func(context.Context, string, string) mdblist.SourceOutcome { panic("unexpected") },
	)
	fetcher.EXPECT().FetchItems(gomock.Any(), "ok", "K").Return(outcome("ok",
		models.ListItem{TMDBID: "7", Type: "movie"},
	))

	resp := NewService(fetcher, testCatalogSettings()).Resolve(context.Background(), []string{"boom", "ok"}, "movie", "K")
	require.Len(t, resp.Metas, 1)
	assert.Equal(t, "Untitled TMDB 7", resp.Metas[0].Name)
	assert.Equal(t, []string{"boom"}, resp.FailedSources())
}

func TestResolveDeduplicatesIdentifiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)
	fetcher.EXPECT().FetchItems(gomock.Any(), "a", "K").Return(outcome("a")).Times(1)
	fetcher.EXPECT().FetchItems(gomock.Any(), "b", "K").Return(outcome("b")).Times(1)

	resp := NewService(fetcher, testCatalogSettings()).Resolve(context.Background(), []string{"a", "b", "a", " b "}, "movie", "K")
	assert.Len(t, resp.Sources, 2)
}

func TestResolveCapsListCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)
	fetcher.EXPECT().FetchItems(gomock.Any(), "a", "K").Return(outcome("a"))
	fetcher.EXPECT().FetchItems(gomock.Any(), "b", "K").Return(outcome("b"))

	cfg := testCatalogSettings()
	cfg.MaxListsPerRequest = 2
	resp := NewService(fetcher, cfg).Resolve(context.Background(), []string{"a", "b", "c", "d"}, "movie", "K")
	assert.Len(t, resp.Sources, 2)
}

// countingFetcher tracks how many fetches run at once and holds each one until
// release is closed.
type countingFetcher struct {
	started int32
	active  int32
	maxSeen int32
	release chan struct{}
}

func (f *countingFetcher) FetchItems(ctx context.Context, slug, apiKey string) mdblist.SourceOutcome {
	atomic.AddInt32(&f.started, 1)
	n := atomic.AddInt32(&f.active, 1)
	for {
		prev := atomic.LoadInt32(&f.maxSeen)
		if n <= prev || atomic.CompareAndSwapInt32(&f.maxSeen, prev, n) {
			break
		}
	}
	<-f.release
	atomic.AddInt32(&f.active, -1)
	return outcome(slug, models.ListItem{TMDBID: models.NumericString(slug), Type: "movie"})
}

func TestResolveBoundsConcurrency(t *testing.T) {
	f := &countingFetcher{release: make(chan struct{})}

	cfg := testCatalogSettings()
	cfg.MaxConcurrency = 2
	ids := []string{"1", "2", "3", "4", "5", "6"}

	done := make(chan models.CatalogResponse, 1)
	go func() {
		done <- NewService(f, cfg).Resolve(context.Background(), ids, "movie", "K")
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&f.active) == 2
	}, 2*time.Second, 5*time.Millisecond)

	// Give the pool a chance to start a third fetch if it were unbounded.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.started))
	select {
	case <-done:
		t.Fatal("Resolve returned while fetches were still blocked")
	default:
	}

	close(f.release)

	var resp models.CatalogResponse
	select {
	case resp = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Resolve did not return after fetches were released")
	}
	require.Len(t, resp.Metas, len(ids))
	for i, id := range ids {
		assert.Equal(t, "tmdb:"+id, resp.Metas[i].ID, "order follows identifier order")
	}
	assert.Equal(t, int32(len(ids)), atomic.LoadInt32(&f.started))
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.maxSeen))
}

// barrierFetcher only completes once every expected fetch has started.
type barrierFetcher struct {
	arrived  sync.WaitGroup
	finished int32
}

func (f *barrierFetcher) FetchItems(ctx context.Context, slug, apiKey string) mdblist.SourceOutcome {
	defer atomic.AddInt32(&f.finished, 1)
	f.arrived.Done()

	all := make(chan struct{})
	go func() {
		f.arrived.Wait()
		close(all)
	}()
	select {
	case <-all:
	case <-time.After(2 * time.Second):
		return mdblist.SourceOutcome{Slug: slug, Err: errors.New("fetches did not overlap")}
	}
	time.Sleep(20 * time.Millisecond)
	return outcome(slug, models.ListItem{TMDBID: models.NumericString(slug), Type: "movie"})
}

func TestResolveFetchesOverlapAndCompleteBeforeReturn(t *testing.T) {
	ids := []string{"1", "2", "3"}
	f := &barrierFetcher{}
	f.arrived.Add(len(ids))

	resp := NewService(f, testCatalogSettings()).Resolve(context.Background(), ids, "movie", "K")

	assert.Empty(t, resp.FailedSources())
	require.Len(t, resp.Metas, len(ids))
	assert.Equal(t, int32(len(ids)), atomic.LoadInt32(&f.finished))
}

func TestResolveIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)
	poster := "//img.example/p.jpg"
	fetcher.EXPECT().FetchItems(gomock.Any(), gomock.Any(), "K").DoAndReturn(
		func(_ context.Context, slug, _ string) mdblist.SourceOutcome {
			return outcome(slug,
				models.ListItem{TMDBID: "3", Type: "movie", Title: "C", Poster: &poster},
				models.ListItem{TMDBID: "1", Type: "movie", Title: "A", Year: "2001"},
				models.ListItem{TMDBID: "2", Type: "movie"},
			)
		},
	).AnyTimes()

	svc := NewService(fetcher, testCatalogSettings())
	first, err := json.Marshal(svc.Resolve(context.Background(), []string{"x", "y"}, "movie", "K"))
	require.NoError(t, err)
	second, err := json.Marshal(svc.Resolve(context.Background(), []string{"x", "y"}, "movie", "K"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.JSONEq(t, `{"metas":[
		{"id":"tmdb:3","type":"movie","name":"C","poster":"https://img.example/p.jpg"},
		{"id":"tmdb:1","type":"movie","name":"A","releaseInfo":"2001"},
		{"id":"tmdb:2","type":"movie","name":"Untitled TMDB 2"}
	]}`, string(first))
}

func TestResolvePassesContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockListFetcher(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher.EXPECT().FetchItems(gomock.Any(), "a", "K").DoAndReturn(
		func(got context.Context, slug, _ string) mdblist.SourceOutcome {
			return mdblist.SourceOutcome{Slug: slug, Err: got.Err()}
		},
	)

	resp := NewService(fetcher, testCatalogSettings()).Resolve(ctx, []string{"a"}, "movie", "K")
	assert.Empty(t, resp.Metas)
	assert.Equal(t, []string{"a"}, resp.FailedSources())
}
