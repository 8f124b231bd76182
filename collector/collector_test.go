package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/service"
	"github.com/hyunwoojo/etf-rag-agent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	docs   []types.Document
	nextID int
}

var _ database.VectorStore = (*memoryStore)(nil)

func (m *memoryStore) Insert(ctx context.Context, doc *types.Document, vector []float32) (string, error) {
	m.nextID++
	stored := *doc
	stored.ID = fmt.Sprintf("doc-%d", m.nextID)
	m.docs = append(m.docs, stored)
	return stored.ID, nil
}

func (m *memoryStore) Search(ctx context.Context, vector []float32, limit int, filters map[string]string) ([]types.SearchResult, error) {
	return nil, nil
}

func (m *memoryStore) FetchAll(ctx context.Context, filters map[string]string) ([]types.Document, error) {
	var matched []types.Document
	for _, doc := range m.docs {
		if filters["etf_code"] != "" && doc.EtfCode != filters["etf_code"] {
			continue
		}
		if filters["content_hash"] != "" && doc.ContentHash != filters["content_hash"] {
			continue
		}
		matched = append(matched, doc)
	}
	return matched, nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	for i, doc := range m.docs {
		if doc.ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memoryStore) Count(ctx context.Context) (int, error) {
	return len(m.docs), nil
}

type echoAI struct{}

func (echoAI) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (echoAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

func (echoAI) Generate(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	return "", nil
}

func TestCollectDomesticIngests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(naverListFixture))
	}))
	defer server.Close()

	store := &memoryStore{}
	ingest := service.NewIngestService(store, config.VersioningConfig{
		EnableDuplicateCheck: true,
		KeepHistory:          true,
		MaxVersionsPerETF:    10,
	})
	coll := NewCollector(config.CollectorConfig{NaverListURL: server.URL}, "", ingest, echoAI{})

	count, result, err := coll.CollectDomestic(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, result.Inserted)
	assert.Zero(t, result.Skipped)
	assert.Zero(t, result.Failed)
	require.Len(t, store.docs, 2)
	assert.Equal(t, 1, store.docs[0].Version)

	// A second run over unchanged data skips everything.
	count, result, err = coll.CollectDomestic(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Zero(t, result.Inserted)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, store.docs, 2)
}

func TestCollectDomesticSourceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := &memoryStore{}
	ingest := service.NewIngestService(store, config.VersioningConfig{})
	coll := NewCollector(config.CollectorConfig{NaverListURL: server.URL}, "", ingest, echoAI{})

	_, _, err := coll.CollectDomestic(context.Background(), 0)
	assert.Error(t, err)
	assert.Empty(t, store.docs)
}
