package catalog

import (
	"context"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Fetcher returns the raw catalog document.
type Fetcher func(ctx context.Context) ([]byte, error)

// FileFetcher reads the catalog document from a local path.
func FileFetcher(path string) Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	}
}

// BytesFetcher serves an in-memory document.
func BytesFetcher(data []byte) Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		return data, ctx.Err()
	}
}

// Decode parses a catalog document and checks every record.
func Decode(data []byte) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("разбор каталога: %w", err)
	}

	seen := make(map[int]struct{}, len(products))
	for i := range products {
		p := &products[i]
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Features == nil {
			p.Features = []string{}
		}
	}
	return products, nil
}
