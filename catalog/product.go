package catalog

import (
	"errors"
	"fmt"
	"slices"
)

type Category string

const (
	Smartphones Category = "Смартфоны"
	Laptops     Category = "Ноутбуки"
	Headphones  Category = "Наушники"
	Tablets     Category = "Планшеты"
	Consoles    Category = "Игровые консоли"
	Accessories Category = "Аксессуары"

	// CategoryAll is the filter wildcard. No product carries it.
	CategoryAll Category = "all"
)

// Categories lists every product category in storefront menu order.
var Categories = []Category{Accessories, Headphones, Tablets, Smartphones, Laptops, Consoles}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	RUB Currency = "RUB"
	UAH Currency = "UAH"
)

var Currencies = []Currency{USD, EUR, RUB, UAH}

func (c Currency) Valid() bool {
	return slices.Contains(Currencies, c)
}

type Review struct {
	Email  string `json:"email" validate:"required,email"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Price       float64  `json:"price"`
	Currency    Currency `json:"currency"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	InStock     bool     `json:"inStock"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Features    []string `json:"features"`
	Brand       string   `json:"brand"`
	ReviewList  []Review `json:"reviewList,omitempty"`
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	p.Features = slices.Clone(p.Features)
	p.ReviewList = slices.Clone(p.ReviewList)
	return p
}

var (
	ErrInvalidProduct = errors.New("некорректный товар в каталоге")
	ErrDuplicateID    = errors.New("повторяющийся id товара")
)

func (p Product) validate() error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("%w: id %d должен быть положительным", ErrInvalidProduct, p.ID)
	case !p.Category.Valid():
		return fmt.Errorf("%w: id %d, неизвестная категория %q", ErrInvalidProduct, p.ID, p.Category)
	case !p.Currency.Valid():
		return fmt.Errorf("%w: id %d, неизвестная валюта %q", ErrInvalidProduct, p.ID, p.Currency)
	case p.Price < 0:
		return fmt.Errorf("%w: id %d, отрицательная цена", ErrInvalidProduct, p.ID)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("%w: id %d, рейтинг вне диапазона [0,5]", ErrInvalidProduct, p.ID)
	case p.Reviews < 0:
		return fmt.Errorf("%w: id %d, отрицательное число отзывов", ErrInvalidProduct, p.ID)
	}
	return nil
}
