package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const twoProducts = `[
  {"id":1,"name":"Sony WH-1000XM5","category":"Наушники","price":100,"currency":"USD","brand":"Sony","inStock":true,"rating":4.5,"features":["Шумоподавление"]},
  {"id":2,"name":"Dell XPS 13","category":"Ноутбуки","price":200,"currency":"USD","brand":"Dell","inStock":false,"rating":3.0}
]`

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestDecode(t *testing.T) {
	products, err := Decode([]byte(twoProducts))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, Headphones, products[0].Category)
	assert.Equal(t, []string{}, products[1].Features)
	assert.False(t, products[1].InStock)
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"duplicate id": {
			doc:  `[{"id":1,"category":"Наушники","currency":"USD"},{"id":1,"category":"Наушники","currency":"USD"}]`,
			want: ErrDuplicateID,
		},
		"unknown category": {
			doc:  `[{"id":1,"category":"Телевизоры","currency":"USD"}]`,
			want: ErrInvalidProduct,
		},
		"unknown currency": {
			doc:  `[{"id":1,"category":"Наушники","currency":"GBP"}]`,
			want: ErrInvalidProduct,
		},
		"zero id": {
			doc:  `[{"id":0,"category":"Наушники","currency":"USD"}]`,
			want: ErrInvalidProduct,
		},
		"rating above five": {
			doc:  `[{"id":1,"category":"Наушники","currency":"USD","rating":5.5}]`,
			want: ErrInvalidProduct,
		},
		"negative price": {
			doc:  `[{"id":1,"category":"Наушники","currency":"USD","price":-1}]`,
			want: ErrInvalidProduct,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(tc.doc))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := Decode([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	logs := observeLogs(t)
	s := NewStore()
	assert.False(t, s.Loaded())

	require.NoError(t, s.Load(context.Background(), BytesFetcher([]byte(twoProducts))))
	assert.True(t, s.Loaded())
	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, PriceBounds{Min: 100, Max: 200}, s.Bounds())
	assert.Equal(t, 1, logs.FilterMessage("Каталог загружен").Len())

	err := s.Load(context.Background(), BytesFetcher([]byte(twoProducts)))
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
}

func TestLoadFailureLeavesEmptyCatalog(t *testing.T) {
	logs := observeLogs(t)
	boom := errors.New("connection refused")
	s := NewStore()

	err := s.Load(context.Background(), func(context.Context) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	assert.True(t, s.Loaded())
	assert.False(t, s.Loading())
	assert.ErrorIs(t, s.Err(), boom)
	assert.Empty(t, s.Products())
	assert.Equal(t, PriceBounds{}, s.Bounds())
	assert.Equal(t, 1, logs.FilterMessage("Ошибка при загрузке продуктов").Len())
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	observeLogs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore()
	err := s.Load(ctx, FileFetcher("../data/products.json"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Len())
}

func TestLoadFromFile(t *testing.T) {
	observeLogs(t)
	s := NewStore()
	require.NoError(t, s.Load(context.Background(), FileFetcher("../data/products.json")))
	assert.Equal(t, 10, s.Len())
	assert.Equal(t, PriceBounds{Min: 199.5, Max: 1299}, s.Bounds())
	assert.Equal(t, []string{"Sony", "Bose", "Apple", "Samsung", "Dell", "Nintendo", "Canon"}, s.Brands())
	assert.Len(t, s.Categories(), 6)
}

func TestFindByID(t *testing.T) {
	observeLogs(t)
	products, err := Decode([]byte(twoProducts))
	require.NoError(t, err)
	s, err := NewStoreFromProducts(products)
	require.NoError(t, err)

	p, ok := s.FindByID(2)
	require.True(t, ok)
	assert.Equal(t, "Dell XPS 13", p.Name)

	_, ok = s.FindByID(3)
	assert.False(t, ok)
	_, ok = s.FindByID(0)
	assert.False(t, ok)
	_, ok = s.FindByID(-1)
	assert.False(t, ok)
}

func TestProductsAreCopies(t *testing.T) {
	observeLogs(t)
	products, err := Decode([]byte(twoProducts))
	require.NoError(t, err)
	s, err := NewStoreFromProducts(products)
	require.NoError(t, err)

	got := s.Products()
	got[0].Features[0] = "changed"
	got[0].Name = "changed"

	p, _ := s.FindByID(1)
	assert.Equal(t, "Шумоподавление", p.Features[0])
	assert.Equal(t, "Sony WH-1000XM5", p.Name)
}

func TestAddReview(t *testing.T) {
	observeLogs(t)
	products, err := Decode([]byte(twoProducts))
	require.NoError(t, err)
	s, err := NewStoreFromProducts(products)
	require.NoError(t, err)

	r := Review{Email: "anna@mail.ru", Text: "Хорошие", Rating: 4}
	p, err := s.AddReview(1, r)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reviews)
	assert.Equal(t, []Review{r}, p.ReviewList)

	p, err = s.AddReview(1, r)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Reviews)
	assert.Len(t, p.ReviewList, 2)

	_, err = s.AddReview(42, r)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
