package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

// ProductAPI is the slice of the remote gateway the debouncer needs.
type ProductAPI interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error)
}

// Debouncer coalesces rapid keystrokes into one catalog request: a query
// only fires after input has been quiet for the window. Every accepted
// query takes a monotonic sequence number, and a response is applied only
// if its number is still the latest issued, so a slow stale request can
// never overwrite a newer one's results.
type Debouncer struct {
	api       ProductAPI
	window    time.Duration
	onResults func(keyword string, products []domain.Product)
	onError   func(keyword string, err error)
	log       zerolog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	closed bool
}

// NewDebouncer builds a debouncer delivering results (and errors) on the
// given callbacks. Callbacks run on the debouncer's own goroutines.
func NewDebouncer(
	api ProductAPI,
	window time.Duration,
	onResults func(keyword string, products []domain.Product),
	onError func(keyword string, err error),
	log zerolog.Logger,
) *Debouncer {
	return &Debouncer{
		api:       api,
		window:    window,
		onResults: onResults,
		onError:   onError,
		log:       log,
	}
}

// Query records a new input state. The previous pending query, if any, is
// superseded; any of its in-flight responses will be discarded.
func (d *Debouncer) Query(keyword string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.fire(keyword, seq)
	})
}

func (d *Debouncer) fire(keyword string, seq uint64) {
	if d.stale(seq) {
		return
	}

	ctx := context.Background()
	var (
		products []domain.Product
		err      error
	)
	if strings.TrimSpace(keyword) == "" {
		products, err = d.api.GetProducts(ctx)
	} else {
		products, err = d.api.SearchProducts(ctx, keyword)
	}

	if d.stale(seq) {
		d.log.Debug().Str("keyword", keyword).Msg("discarding superseded search response")
		return
	}

	if err != nil {
		if d.onError != nil {
			d.onError(keyword, err)
		}
		return
	}
	d.onResults(keyword, products)
}

func (d *Debouncer) stale(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed || seq != d.seq
}

// Close stops the pending query, if any. Subsequent Query calls are
// ignored.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
