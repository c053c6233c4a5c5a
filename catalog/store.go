package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("товар не найден")
	ErrAlreadyLoaded   = errors.New("каталог уже загружен")
)

// PriceBounds is the price range of the loaded catalog.
type PriceBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Store holds the catalog. Apart from review appends it is read-only once
// loaded.
type Store struct {
	mu       sync.RWMutex
	products []Product
	index    map[int]int
	bounds   PriceBounds
	loading  bool
	loaded   bool
	err      error
}

func NewStore() *Store {
	return &Store{index: map[int]int{}}
}

// NewStoreFromProducts builds an already loaded store.
func NewStoreFromProducts(products []Product) (*Store, error) {
	data, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}
	s := NewStore()
	if err := s.Load(context.Background(), BytesFetcher(data)); err != nil {
		return nil, err
	}
	return s, nil
}

// Load fetches and decodes the catalog once. A failure is logged and leaves
// the catalog empty; there is no retry.
func (s *Store) Load(ctx context.Context, fetch Fetcher) error {
	s.mu.Lock()
	if s.loaded || s.loading {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.loading = true
	s.mu.Unlock()

	products, err := fetchAndDecode(ctx, fetch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.loaded = true
	if err != nil {
		s.err = err
		zap.L().Error("Ошибка при загрузке продуктов", zap.Error(err))
		return err
	}

	s.products = products
	s.index = make(map[int]int, len(products))
	for i, p := range products {
		s.index[p.ID] = i
	}
	s.bounds = computeBounds(products)
	zap.L().Info("Каталог загружен",
		zap.Int("products", len(products)),
		zap.Float64("min_price", s.bounds.Min),
		zap.Float64("max_price", s.bounds.Max))
	return nil
}

func fetchAndDecode(ctx context.Context, fetch Fetcher) ([]Product, error) {
	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func computeBounds(products []Product) PriceBounds {
	if len(products) == 0 {
		return PriceBounds{}
	}
	b := PriceBounds{Min: products[0].Price, Max: products[0].Price}
	for _, p := range products[1:] {
		b.Min = min(b.Min, p.Price)
		b.Max = max(b.Max, p.Price)
	}
	return b
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err returns the load failure, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Products returns the catalog in document order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) FindByID(id int) (Product, bool) {
	if id <= 0 {
		return Product{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i].Clone(), true
}

func (s *Store) Bounds() PriceBounds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bounds
}

// Brands returns the distinct brands in first-seen order.
func (s *Store) Brands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	var brands []string
	for _, p := range s.products {
		if _, ok := seen[p.Brand]; ok || p.Brand == "" {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	return brands
}

// Categories returns the categories present in the catalog in first-seen order.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[Category]struct{}{}
	var cats []Category
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		cats = append(cats, p.Category)
	}
	return cats
}

// AddReview appends an already validated review and bumps the review counter.
func (s *Store) AddReview(id int, r Review) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	p := &s.products[i]
	p.ReviewList = append(p.ReviewList, r)
	p.Reviews++
	return p.Clone(), nil
}
