package promo

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownCode  = errors.New("неизвестный промокод")
	ErrInvalidTable = errors.New("некорректная таблица промокодов")
)

// Code is one promo code and the percentage it takes off the whole cart.
type Code struct {
	Code    string `yaml:"code" json:"code"`
	Percent int    `yaml:"discount" json:"discount"`
}

// Table looks codes up by exact, case-sensitive match.
type Table struct {
	codes map[string]int
	list  []Code
}

var defaultCodes = []Code{
	{Code: "SALE25", Percent: 25},
	{Code: "SUPER10", Percent: 10},
}

func DefaultTable() *Table {
	t, _ := NewTable(defaultCodes)
	return t
}

func NewTable(codes []Code) (*Table, error) {
	t := &Table{codes: make(map[string]int, len(codes))}
	for _, c := range codes {
		if strings.TrimSpace(c.Code) == "" {
			return nil, fmt.Errorf("%w: пустой код", ErrInvalidTable)
		}
		if c.Percent <= 0 || c.Percent > 100 {
			return nil, fmt.Errorf("%w: скидка %d%% для %s вне диапазона (0,100]", ErrInvalidTable, c.Percent, c.Code)
		}
		if _, dup := t.codes[c.Code]; dup {
			return nil, fmt.Errorf("%w: код %s повторяется", ErrInvalidTable, c.Code)
		}
		t.codes[c.Code] = c.Percent
		t.list = append(t.list, c)
	}
	return t, nil
}

type tableFile struct {
	Codes []Code `yaml:"codes"`
}

// LoadTable reads a YAML promo table:
//
//	codes:
//	  - code: SALE25
//	    discount: 25
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return NewTable(f.Codes)
}

func (t *Table) Lookup(code string) (int, bool) {
	p, ok := t.codes[code]
	return p, ok
}

func (t *Table) Codes() []Code {
	return append([]Code(nil), t.list...)
}

// Apply returns the percentage that becomes active after entering code. A
// known code replaces the current percentage; codes never stack. A blank or
// unknown code keeps current and returns ErrUnknownCode.
func (t *Table) Apply(current int, code string) (int, error) {
	if strings.TrimSpace(code) == "" {
		return current, ErrUnknownCode
	}
	p, ok := t.Lookup(code)
	if !ok {
		return current, fmt.Errorf("%w: %s", ErrUnknownCode, code)
	}
	return p, nil
}
