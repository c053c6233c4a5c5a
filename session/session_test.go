package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmnl/yandex-techstore/cart"
	"github.com/jrmnl/yandex-techstore/catalog"
	"github.com/jrmnl/yandex-techstore/events"
	"github.com/jrmnl/yandex-techstore/filter"
	"github.com/jrmnl/yandex-techstore/promo"
	"github.com/jrmnl/yandex-techstore/review"
)

type recorder struct {
	mu      sync.Mutex
	actions []events.UserAction
}

func (r *recorder) Publish(a events.UserAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

func (r *recorder) kinds() []events.ActionKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.ActionKind, len(r.actions))
	for i, a := range r.actions {
		kinds[i] = a.Kind
	}
	return kinds
}

func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.NewStoreFromProducts([]catalog.Product{
		{ID: 1, Name: "Sony WH-1000XM4", Category: catalog.Headphones, Price: 100, Currency: catalog.USD, InStock: true, Rating: 4.8, Brand: "Sony"},
		{ID: 2, Name: "iPhone 13", Category: catalog.Smartphones, Price: 50, Currency: catalog.USD, InStock: true, Rating: 4.5, Brand: "Apple"},
		{ID: 3, Name: "Dell XPS 13", Category: catalog.Laptops, Price: 900, Currency: catalog.USD, InStock: false, Rating: 4.2, Brand: "Dell"},
	})
	require.NoError(t, err)
	return store
}

func newSession(t *testing.T) (*Session, *recorder) {
	rec := &recorder{}
	return New("s-1", testStore(t), promo.DefaultTable(), rec), rec
}

func ids(products []catalog.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestNewSessionStartsCleared(t *testing.T) {
	s, _ := newSession(t)
	c := s.Criteria()
	assert.Equal(t, catalog.CategoryAll, c.Category)
	require.NotNil(t, c.MaxPrice)
	assert.Equal(t, 900.0, *c.MaxPrice)
	assert.Equal(t, []int{1, 2, 3}, ids(s.FilteredProducts()))
	assert.Empty(t, s.CartLines())
	assert.Equal(t, promo.Totals{}, s.Totals())
}

func TestFilterEdits(t *testing.T) {
	s, rec := newSession(t)

	_, err := s.SetCategory(catalog.Headphones)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(s.FilteredProducts()))

	before := s.Criteria()
	_, err = s.SetCategory("Телевизоры")
	assert.ErrorIs(t, err, filter.ErrUnknownCategory)
	assert.Equal(t, before, s.Criteria())

	s.ClearFilters()
	inStock := true
	s.SetStock(&inStock)
	assert.Equal(t, []int{1, 2}, ids(s.FilteredProducts()))

	s.ToggleBrand("Apple")
	assert.Equal(t, []int{2}, ids(s.FilteredProducts()))
	s.ToggleBrand("Apple")
	assert.Equal(t, []int{1, 2}, ids(s.FilteredProducts()))

	_, err = s.SetMinRating(4.6)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(s.FilteredProducts()))
	_, err = s.SetMinRating(7)
	assert.ErrorIs(t, err, filter.ErrInvalidRating)

	lo, hi := 60.0, 10.0
	_, err = s.SetPriceRange(&lo, &hi)
	assert.ErrorIs(t, err, filter.ErrInvalidPrice)

	s.ClearFilters()
	c := s.SetSearch("IPHONE")
	assert.Equal(t, "IPHONE", c.SearchQuery)
	assert.Equal(t, []int{2}, ids(s.FilteredProducts()))

	for _, k := range rec.kinds() {
		assert.Equal(t, events.FilterChange, k)
	}
	assert.Len(t, rec.kinds(), 8)
}

func TestReplaceFilters(t *testing.T) {
	s, _ := newSession(t)
	maxPrice := 0.0
	c, err := s.ReplaceFilters(filter.Criteria{MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Equal(t, 0.0, *c.MaxPrice)
	assert.Empty(t, s.FilteredProducts())

	_, err = s.ReplaceFilters(filter.Criteria{Category: "Телевизоры"})
	assert.ErrorIs(t, err, filter.ErrUnknownCategory)
	assert.Equal(t, 0.0, *s.Criteria().MaxPrice)
}

func TestPreviewLeavesCriteria(t *testing.T) {
	s, rec := newSession(t)
	before := s.Criteria()
	got, err := s.Preview(filter.Criteria{SearchQuery: "sony"})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(got))
	assert.Equal(t, before, s.Criteria())
	assert.Equal(t, []events.ActionKind{events.Search}, rec.kinds())

	_, err = s.Preview(filter.Criteria{MinRating: -1})
	assert.ErrorIs(t, err, filter.ErrInvalidRating)
}

func TestCartOperations(t *testing.T) {
	s, rec := newSession(t)

	_, err := s.AddToCart(42, true)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = s.AddToCart(3, true)
	assert.ErrorIs(t, err, ErrOutOfStock)

	qty, err := s.AddToCart(1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)
	for range 3 {
		qty, err = s.AddToCart(1, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, qty)
	assert.Equal(t, 4, s.QuantityOf(1))

	qty, err = s.RemoveFromCart(1, false)
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	qty, err = s.RemoveFromCart(1, true)
	require.NoError(t, err)
	assert.Zero(t, qty)

	_, err = s.RemoveFromCart(1, false)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)
	assert.Empty(t, s.CartLines())

	assert.Equal(t, []events.ActionKind{
		events.CartAdd, events.CartAdd, events.CartAdd, events.CartAdd,
		events.CartRemove, events.CartRemove,
	}, rec.kinds())
}

func TestApplyPromo(t *testing.T) {
	s, rec := newSession(t)
	_, err := s.AddToCart(1, true)
	require.NoError(t, err)
	_, err = s.AddToCart(1, false)
	require.NoError(t, err)
	_, err = s.AddToCart(2, true)
	require.NoError(t, err)

	totals, err := s.ApplyPromo("SALE25")
	require.NoError(t, err)
	assert.Equal(t, 25, totals.Percent)
	assert.Equal(t, 250.0, totals.Amount)
	assert.Equal(t, 62.5, totals.Discount)
	assert.Equal(t, 187.5, totals.GrandTotal)

	totals, err = s.ApplyPromo("BADCODE")
	assert.ErrorIs(t, err, promo.ErrUnknownCode)
	assert.Equal(t, 25, totals.Percent)
	assert.Equal(t, 187.5, totals.GrandTotal)
	assert.Equal(t, totals, s.Totals())

	kinds := rec.kinds()
	assert.Equal(t, []events.ActionKind{events.PromoApplied, events.PromoRejected}, kinds[len(kinds)-2:])
}

func TestClearCart(t *testing.T) {
	s, rec := newSession(t)
	assert.Zero(t, s.ClearCart())
	assert.Empty(t, rec.kinds())

	_, err := s.AddToCart(1, true)
	require.NoError(t, err)
	_, err = s.AddToCart(1, false)
	require.NoError(t, err)
	_, err = s.AddToCart(2, true)
	require.NoError(t, err)
	_, err = s.ApplyPromo("SUPER10")
	require.NoError(t, err)

	assert.Equal(t, 3, s.ClearCart())
	assert.Empty(t, s.CartLines())
	assert.Zero(t, s.QuantityOf(1))

	totals := s.Totals()
	assert.Equal(t, 10, totals.Percent)
	assert.Zero(t, totals.GrandTotal)

	last := rec.actions[len(rec.actions)-1]
	assert.Equal(t, events.CartCleared, last.Kind)
	assert.Equal(t, 3, last.Quantity)
}

func TestSubmitReview(t *testing.T) {
	s, rec := newSession(t)

	_, err := s.SubmitReview(1, catalog.Review{Email: "anna@example.com", Text: "ok", Rating: 0})
	assert.ErrorIs(t, err, review.ErrInvalidReview)
	p, _ := s.store.FindByID(1)
	assert.Empty(t, p.ReviewList)
	assert.Zero(t, p.Reviews)

	_, err = s.SubmitReview(42, catalog.Review{Email: "anna@example.com", Text: "ok", Rating: 5})
	assert.ErrorIs(t, err, ErrProductNotFound)

	p, err = s.SubmitReview(1, catalog.Review{Email: "anna@example.com", Text: " Отлично ", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reviews)
	assert.Equal(t, []catalog.Review{{Email: "anna@example.com", Text: "Отлично", Rating: 5}}, p.ReviewList)
	assert.Equal(t, []events.ActionKind{events.ReviewSubmitted}, rec.kinds())
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	s, _ := newSession(t)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddToCart(2, false)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.QuantityOf(2))
	assert.Len(t, s.CartLines(), 1)
}

func TestLastSeenMovesOnUse(t *testing.T) {
	s, _ := newSession(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	s.QuantityOf(1)
	assert.Equal(t, now, s.LastSeen())
}

func TestCartSnapshot(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.AddToCart(2, true)
	require.NoError(t, err)
	_, err = s.ApplyPromo("SUPER10")
	require.NoError(t, err)

	lines, totals := s.Cart()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Product.ID)
	assert.Equal(t, 50.0, totals.Amount)
	assert.Equal(t, 5.0, totals.Discount)
	assert.Equal(t, 45.0, totals.GrandTotal)
}
