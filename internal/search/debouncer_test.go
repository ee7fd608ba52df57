package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

type fakeProductAPI struct {
	mu        sync.Mutex
	searches  []string
	getCalls  int
	searchErr error
	blockOn   map[string]chan struct{}
}

func (f *fakeProductAPI) GetProducts(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	f.getCalls++
	f.mu.Unlock()
	return []domain.Product{{ID: 1, Name: "everything"}}, nil
}

func (f *fakeProductAPI) SearchProducts(_ context.Context, keyword string) ([]domain.Product, error) {
	f.mu.Lock()
	f.searches = append(f.searches, keyword)
	err := f.searchErr
	block := f.blockOn[keyword]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return []domain.Product{{ID: 1, Name: keyword}}, nil
}

func (f *fakeProductAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

type resultRecorder struct {
	mu       sync.Mutex
	keywords []string
	errs     []string
}

func (r *resultRecorder) onResults(keyword string, _ []domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keywords = append(r.keywords, keyword)
}

func (r *resultRecorder) onError(keyword string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, keyword)
}

func (r *resultRecorder) results() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.keywords))
	copy(out, r.keywords)
	return out
}

func TestRapidQueriesCoalesce(t *testing.T) {
	api := &fakeProductAPI{}
	rec := &resultRecorder{}
	d := NewDebouncer(api, 30*time.Millisecond, rec.onResults, rec.onError, zerolog.Nop())
	defer d.Close()

	d.Query("m")
	d.Query("mu")
	d.Query("mug")

	require.Eventually(t, func() bool {
		return len(rec.results()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"mug"}, rec.results())
	assert.Equal(t, 1, api.searchCount(), "rapid keystrokes coalesce into one request")
}

func TestEmptyKeywordFetchesFullCatalog(t *testing.T) {
	api := &fakeProductAPI{}
	rec := &resultRecorder{}
	d := NewDebouncer(api, 10*time.Millisecond, rec.onResults, rec.onError, zerolog.Nop())
	defer d.Close()

	d.Query("   ")

	require.Eventually(t, func() bool {
		return len(rec.results()) == 1
	}, time.Second, 5*time.Millisecond)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 1, api.getCalls)
	assert.Empty(t, api.searches)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	slowDone := make(chan struct{})
	api := &fakeProductAPI{blockOn: map[string]chan struct{}{"slow": slowDone}}
	rec := &resultRecorder{}
	d := NewDebouncer(api, 10*time.Millisecond, rec.onResults, rec.onError, zerolog.Nop())
	defer d.Close()

	d.Query("slow")
	// Wait until the slow request is actually in flight.
	require.Eventually(t, func() bool {
		return api.searchCount() == 1
	}, time.Second, time.Millisecond)

	d.Query("fast")
	require.Eventually(t, func() bool {
		return len(rec.results()) == 1
	}, time.Second, time.Millisecond)

	// Now let the superseded request finish; its response must be dropped.
	close(slowDone)
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, []string{"fast"}, rec.results(), "a stale in-flight response must not overwrite newer results")
}

func TestSearchErrorsAreReported(t *testing.T) {
	api := &fakeProductAPI{searchErr: errors.New("boom")}
	rec := &resultRecorder{}
	d := NewDebouncer(api, 10*time.Millisecond, rec.onResults, rec.onError, zerolog.Nop())
	defer d.Close()

	d.Query("mug")

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.errs) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, rec.results())
}

func TestQueryAfterCloseIsIgnored(t *testing.T) {
	api := &fakeProductAPI{}
	rec := &resultRecorder{}
	d := NewDebouncer(api, 5*time.Millisecond, rec.onResults, rec.onError, zerolog.Nop())

	d.Close()
	d.Query("mug")

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, api.searchCount())
	assert.Empty(t, rec.results())
}
