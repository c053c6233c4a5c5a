package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/jrmnl/yandex-techstore/cart"
	"github.com/jrmnl/yandex-techstore/catalog"
	"github.com/jrmnl/yandex-techstore/events"
	"github.com/jrmnl/yandex-techstore/filter"
	"github.com/jrmnl/yandex-techstore/promo"
	"github.com/jrmnl/yandex-techstore/review"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrProductNotFound = catalog.ErrProductNotFound
	ErrOutOfStock      = errors.New("товара нет в наличии")
)

// Publisher receives every state-changing action of a session.
type Publisher interface {
	Publish(events.UserAction)
}

type noopPublisher struct{}

func (noopPublisher) Publish(events.UserAction) {}

// Session is the state of one storefront visitor: filter criteria, cart and
// the active promo percentage. All operations on a session are serialized.
type Session struct {
	mu        sync.Mutex
	id        string
	store     *catalog.Store
	promos    *promo.Table
	publisher Publisher
	now       func() time.Time

	criteria filter.Criteria
	cart     *cart.Cart
	percent  int
	lastSeen time.Time
}

func New(id string, store *catalog.Store, promos *promo.Table, publisher Publisher) *Session {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	s := &Session{
		id:        id,
		store:     store,
		promos:    promos,
		publisher: publisher,
		now:       time.Now,
		criteria:  filter.Cleared(store.Bounds()),
		cart:      cart.New(),
	}
	s.lastSeen = s.now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// lock must be paired with s.mu.Unlock.
func (s *Session) lock() {
	s.mu.Lock()
	s.lastSeen = s.now()
}

func (s *Session) publish(a events.UserAction) {
	s.publisher.Publish(a)
}

func (s *Session) action(kind events.ActionKind) events.UserAction {
	return events.NewUserAction(s.id, kind)
}

func (s *Session) Criteria() filter.Criteria {
	s.lock()
	defer s.mu.Unlock()
	return s.criteria.Clone()
}

func (s *Session) FilteredProducts() []catalog.Product {
	s.lock()
	defer s.mu.Unlock()
	return filter.Apply(s.store.Products(), s.criteria)
}

// Preview filters the catalog with c without touching the session criteria.
func (s *Session) Preview(c filter.Criteria) ([]catalog.Product, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s.lock()
	defer s.mu.Unlock()
	if c.SearchQuery != "" {
		a := s.action(events.Search)
		a.Query = c.SearchQuery
		s.publish(a)
	}
	return filter.Apply(s.store.Products(), c), nil
}

func (s *Session) Facets() filter.Facets {
	return filter.ComputeFacets(s.FilteredProducts())
}

// mutateCriteria applies fn under the lock and publishes the new criteria
// when fn succeeds.
func (s *Session) mutateCriteria(fn func(c *filter.Criteria) error) (filter.Criteria, error) {
	s.lock()
	defer s.mu.Unlock()
	next := s.criteria.Clone()
	if err := fn(&next); err != nil {
		return s.criteria.Clone(), err
	}
	s.criteria = next

	a := s.action(events.FilterChange)
	if data, err := json.Marshal(next); err == nil {
		a.Filters = string(data)
	}
	a.Query = next.SearchQuery
	s.publish(a)
	return next.Clone(), nil
}

func (s *Session) SetCategory(category catalog.Category) (filter.Criteria, error) {
	return s.mutateCriteria(func(c *filter.Criteria) error {
		return c.SetCategory(category)
	})
}

func (s *Session) SetSearch(query string) filter.Criteria {
	c, _ := s.mutateCriteria(func(c *filter.Criteria) error {
		c.SetSearch(query)
		return nil
	})
	return c
}

func (s *Session) SetPriceRange(minPrice, maxPrice *float64) (filter.Criteria, error) {
	return s.mutateCriteria(func(c *filter.Criteria) error {
		return c.SetPriceRange(minPrice, maxPrice)
	})
}

func (s *Session) SetStock(inStock *bool) filter.Criteria {
	c, _ := s.mutateCriteria(func(c *filter.Criteria) error {
		c.SetStock(inStock)
		return nil
	})
	return c
}

func (s *Session) SetMinRating(rating float64) (filter.Criteria, error) {
	return s.mutateCriteria(func(c *filter.Criteria) error {
		return c.SetMinRating(rating)
	})
}

func (s *Session) ToggleBrand(brand string) filter.Criteria {
	c, _ := s.mutateCriteria(func(c *filter.Criteria) error {
		c.ToggleBrand(brand)
		return nil
	})
	return c
}

func (s *Session) ClearFilters() filter.Criteria {
	bounds := s.store.Bounds()
	c, _ := s.mutateCriteria(func(c *filter.Criteria) error {
		*c = filter.Cleared(bounds)
		return nil
	})
	return c
}

// ReplaceFilters swaps the whole criteria after validating it.
func (s *Session) ReplaceFilters(next filter.Criteria) (filter.Criteria, error) {
	if err := next.Validate(); err != nil {
		return s.Criteria(), err
	}
	return s.mutateCriteria(func(c *filter.Criteria) error {
		*c = next.Clone()
		return nil
	})
}

func (s *Session) product(id int) (catalog.Product, error) {
	p, ok := s.store.FindByID(id)
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	return p, nil
}

// AddToCart adds one unit of the product and returns the resulting quantity.
// A product that is out of stock cannot start a new line.
func (s *Session) AddToCart(id int, isNewLine bool) (int, error) {
	p, err := s.product(id)
	if err != nil {
		return 0, err
	}
	s.lock()
	defer s.mu.Unlock()
	if !p.InStock && s.cart.QuantityOf(id) == 0 {
		return 0, fmt.Errorf("%w: id %d", ErrOutOfStock, id)
	}
	qty := s.cart.Add(p, isNewLine)

	a := s.action(events.CartAdd)
	a.ProductId = id
	a.Quantity = qty
	s.publish(a)
	return qty, nil
}

// RemoveFromCart takes one unit, or the whole line when entire is set, and
// returns the remaining quantity.
func (s *Session) RemoveFromCart(id int, entire bool) (int, error) {
	p, err := s.product(id)
	if err != nil {
		return 0, err
	}
	s.lock()
	defer s.mu.Unlock()
	qty, err := s.cart.Remove(p, entire)
	if err != nil {
		return 0, err
	}

	a := s.action(events.CartRemove)
	a.ProductId = id
	a.Quantity = qty
	s.publish(a)
	return qty, nil
}

// ClearCart empties the cart and returns how many items were removed. The
// active promo code stays.
func (s *Session) ClearCart() int {
	s.lock()
	defer s.mu.Unlock()
	removed := s.cart.TotalQty()
	if removed == 0 {
		return 0
	}
	s.cart.Clear()

	a := s.action(events.CartCleared)
	a.Quantity = removed
	s.publish(a)
	return removed
}

func (s *Session) QuantityOf(id int) int {
	s.lock()
	defer s.mu.Unlock()
	return s.cart.QuantityOf(id)
}

func (s *Session) CartLines() []cart.Line {
	s.lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Cart returns the lines and their totals as of one moment.
func (s *Session) Cart() ([]cart.Line, promo.Totals) {
	s.lock()
	defer s.mu.Unlock()
	lines := s.cart.Lines()
	return lines, promo.Compute(lines, s.percent)
}

func (s *Session) Totals() promo.Totals {
	s.lock()
	defer s.mu.Unlock()
	return promo.Compute(s.cart.Lines(), s.percent)
}

// ApplyPromo activates the code. The totals are returned in both cases; on
// an unknown code they reflect the unchanged percentage.
func (s *Session) ApplyPromo(code string) (promo.Totals, error) {
	s.lock()
	defer s.mu.Unlock()
	percent, err := s.promos.Apply(s.percent, code)

	a := s.action(events.PromoApplied)
	a.PromoCode = code
	if err != nil {
		a.Kind = events.PromoRejected
		zap.L().Info("Промокод отклонен", zap.String("session", s.id), zap.String("code", code))
	} else {
		s.percent = percent
	}
	a.Percent = s.percent
	s.publish(a)
	return promo.Compute(s.cart.Lines(), s.percent), err
}

// SubmitReview validates r and appends it to the product. Nothing is written
// when validation fails.
func (s *Session) SubmitReview(id int, r catalog.Review) (catalog.Product, error) {
	if _, err := s.product(id); err != nil {
		return catalog.Product{}, err
	}
	r, err := review.Validate(r)
	if err != nil {
		return catalog.Product{}, err
	}
	s.lock()
	defer s.mu.Unlock()
	p, err := s.store.AddReview(id, r)
	if err != nil {
		return catalog.Product{}, err
	}

	a := s.action(events.ReviewSubmitted)
	a.ProductId = id
	a.Rating = r.Rating
	s.publish(a)
	return p, nil
}
