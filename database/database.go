package database

import (
	"context"

	"github.com/hyunwoojo/etf-rag-agent/types"
)

// VectorStore is the contract both policies consume. Vectors are produced by
// the caller; the store never vectorizes. Filters are exact-match conditions
// on scalar properties (etf_code, etf_type, content_hash, ...).
type VectorStore interface {
	// Insert writes one document and returns the store-assigned id.
	Insert(ctx context.Context, doc *types.Document, vector []float32) (string, error)

	// Search returns up to limit documents nearest to vector that match all
	// filters, each with a certainty score, in store ranking order. The limit
	// is applied by the store before any caller-side score filtering.
	Search(ctx context.Context, vector []float32, limit int, filters map[string]string) ([]types.SearchResult, error)

	// FetchAll returns every document matching all filters, unranked.
	FetchAll(ctx context.Context, filters map[string]string) ([]types.Document, error)

	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
