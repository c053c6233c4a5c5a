package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jrmnl/yandex-techstore/catalog"
)

var ErrInvalidReview = errors.New("некорректный отзыв")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate normalizes r and checks it. A rating of 0 means no stars were
// chosen and fails the required rule like any other missing field.
func Validate(r catalog.Review) (catalog.Review, error) {
	r.Email = strings.TrimSpace(r.Email)
	r.Text = strings.TrimSpace(r.Text)
	if err := validate.Struct(r); err != nil {
		return catalog.Review{}, fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}
	return r, nil
}

// Fields lists the names of the fields that failed validation, in struct order.
func Fields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fields
}

type Summary struct {
	Count     int     `json:"count"`
	Submitted int     `json:"submitted"`
	Average   float64 `json:"average"`
}

// Summarize reports the product's review counter together with the count and
// average rating of the reviews actually stored on it.
func Summarize(p catalog.Product) Summary {
	s := Summary{Count: p.Reviews, Submitted: len(p.ReviewList)}
	if s.Submitted == 0 {
		return s
	}
	sum := 0
	for _, r := range p.ReviewList {
		sum += r.Rating
	}
	s.Average = decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(s.Submitted))).
		Round(1).
		InexactFloat64()
	return s
}
