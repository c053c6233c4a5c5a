package cart

import (
	"errors"
	"slices"

	"github.com/jrmnl/yandex-techstore/catalog"
)

var ErrLineNotFound = errors.New("товара нет в корзине")

// Line is a product snapshot with its quantity. Qty is always at least 1.
type Line struct {
	Product catalog.Product `json:"product"`
	Qty     int             `json:"qty"`
}

// Cart maps product ids to lines and keeps the order lines were created in.
// It is not safe for concurrent use; the owning session serializes access.
type Cart struct {
	lines map[int]*Line
	order []int
}

func New() *Cart {
	return &Cart{lines: map[int]*Line{}}
}

// Add inserts a line with qty 1 or increments the existing one. isNewLine is
// only a hint from the caller; the cart never holds two lines for one id.
// Returns the resulting quantity.
func (c *Cart) Add(p catalog.Product, isNewLine bool) int {
	if l, ok := c.lines[p.ID]; ok {
		l.Qty++
		return l.Qty
	}
	c.lines[p.ID] = &Line{Product: p.Clone(), Qty: 1}
	c.order = append(c.order, p.ID)
	return 1
}

// Remove deletes the whole line, or decrements it and deletes it at zero.
// Returns the remaining quantity. ErrLineNotFound leaves the cart unchanged.
func (c *Cart) Remove(p catalog.Product, removeEntireLine bool) (int, error) {
	l, ok := c.lines[p.ID]
	if !ok {
		return 0, ErrLineNotFound
	}
	if !removeEntireLine && l.Qty > 1 {
		l.Qty--
		return l.Qty, nil
	}
	c.drop(p.ID)
	return 0, nil
}

func (c *Cart) drop(id int) {
	delete(c.lines, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Quantity returns 0 for products without a line.
func (c *Cart) Quantity(p catalog.Product) int {
	return c.QuantityOf(p.ID)
}

func (c *Cart) QuantityOf(id int) int {
	if l, ok := c.lines[id]; ok {
		return l.Qty
	}
	return 0
}

// Lines returns a snapshot in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		l := c.lines[id]
		out = append(out, Line{Product: l.Product.Clone(), Qty: l.Qty})
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.order)
}

// TotalQty is the number of items across all lines.
func (c *Cart) TotalQty() int {
	n := 0
	for _, l := range c.lines {
		n += l.Qty
	}
	return n
}

func (c *Cart) Clear() {
	c.lines = map[int]*Line{}
	c.order = nil
}
