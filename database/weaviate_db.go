package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// FetchAll pages through results with this limit per request.
const fetchPageSize = 1000

var documentFields = []graphql.Field{
	{Name: "etf_code"},
	{Name: "etf_name"},
	{Name: "content"},
	{Name: "content_hash"},
	{Name: "date"},
	{Name: "version"},
	{Name: "source"},
	{Name: "etf_type"},
	{Name: "category"},
	{Name: "metadata_json"},
	{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}, {Name: "id"}}},
}

func documentClassObject(className string) *models.Class {
	return &models.Class{
		Class: className,
		// Vectors always come from the active embedding provider, never
		// from a Weaviate module.
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "etf_code", DataType: []string{"text"}},
			{Name: "etf_name", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "content_hash", DataType: []string{"text"}},
			{Name: "date", DataType: []string{"text"}},
			{Name: "version", DataType: []string{"int"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "etf_type", DataType: []string{"text"}},
			{Name: "category", DataType: []string{"text"}},
			{Name: "metadata_json", DataType: []string{"text"}},
		},
		VectorIndexType: "hnsw",
	}
}

type WeaviateStore struct {
	client    *weaviate.Client
	className string
	log       *logger.Logger
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")

	clientCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		clientCfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}

	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	className := cfg.ClassName
	if className == "" {
		className = "ETFDocument"
	}

	store := &WeaviateStore{
		client:    client,
		className: className,
		log:       logger.New("weaviate"),
	}
	if err := store.ensureClass(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *WeaviateStore) ensureClass(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class == s.className {
			return nil
		}
	}

	err = s.client.Schema().ClassCreator().WithClass(documentClassObject(s.className)).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create class %s: %w", s.className, err)
	}
	s.log.Infof("created class %s", s.className)
	return nil
}

// Reset drops and recreates the document class, discarding all documents.
func (s *WeaviateStore) Reset(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(s.className).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete class %s: %w", s.className, err)
	}
	err = s.client.Schema().ClassCreator().WithClass(documentClassObject(s.className)).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create class %s: %w", s.className, err)
	}
	return nil
}

func (s *WeaviateStore) Insert(ctx context.Context, doc *types.Document, vector []float32) (string, error) {
	properties := map[string]interface{}{
		"etf_code":      doc.EtfCode,
		"etf_name":      doc.EtfName,
		"content":       doc.Content,
		"content_hash":  doc.ContentHash,
		"date":          doc.Date,
		"version":       doc.Version,
		"source":        doc.Source,
		"etf_type":      doc.EtfType,
		"category":      doc.Category,
		"metadata_json": encodeMetadata(doc.Metadata),
	}

	creator := s.client.Data().Creator().
		WithClassName(s.className).
		WithProperties(properties)
	if vector != nil {
		creator = creator.WithVector(vector)
	}

	result, err := creator.Do(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	id := string(result.Object.ID)
	s.log.WithField("etf_code", doc.EtfCode).Debugf("inserted document %s (v%d)", id, doc.Version)
	return id, nil
}

func (s *WeaviateStore) Search(ctx context.Context, vector []float32, limit int, filterMap map[string]string) ([]types.SearchResult, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(documentFields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	if where := buildWhereFilter(filterMap); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	docs, certainties := parseDocuments(result.Data, s.className)
	results := make([]types.SearchResult, 0, len(docs))
	for i, doc := range docs {
		results = append(results, types.SearchResult{
			Document:  doc,
			Certainty: certainties[i],
		})
	}
	return results, nil
}

func (s *WeaviateStore) FetchAll(ctx context.Context, filterMap map[string]string) ([]types.Document, error) {
	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(documentFields...).
		WithLimit(fetchPageSize)
	if where := buildWhereFilter(filterMap); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("fetch failed: %v", result.Errors[0].Message)
	}

	docs, _ := parseDocuments(result.Data, s.className)
	return docs, nil
}

func (s *WeaviateStore) Delete(ctx context.Context, id string) error {
	return s.client.Data().Deleter().
		WithClassName(s.className).
		WithID(id).
		Do(ctx)
}

func (s *WeaviateStore) Count(ctx context.Context) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(s.className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	if result.Errors != nil {
		return 0, fmt.Errorf("count failed: %v", result.Errors[0].Message)
	}

	aggregate, ok := result.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	classes, ok := aggregate[s.className].([]interface{})
	if !ok || len(classes) == 0 {
		return 0, nil
	}
	entry, ok := classes[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := entry["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

// Helper functions

func buildWhereFilter(filterMap map[string]string) *filters.WhereBuilder {
	var whereFilter *filters.WhereBuilder

	for key, value := range filterMap {
		if value == "" {
			continue
		}
		condition := filters.Where().
			WithPath([]string{key}).
			WithOperator(filters.Equal).
			WithValueString(value)
		if whereFilter == nil {
			whereFilter = condition
		} else {
			whereFilter = filters.Where().
				WithOperator(filters.And).
				WithOperands([]*filters.WhereBuilder{whereFilter, condition})
		}
	}

	return whereFilter
}

func parseDocuments(data map[string]models.JSONObject, className string) ([]types.Document, []float64) {
	var docs []types.Document
	var certainties []float64

	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return docs, certainties
	}
	items, ok := get[className].([]interface{})
	if !ok {
		return docs, certainties
	}

	for _, item := range items {
		props, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		doc := types.Document{
			EtfCode:     getString(props, "etf_code"),
			EtfName:     getString(props, "etf_name"),
			Content:     getString(props, "content"),
			ContentHash: getString(props, "content_hash"),
			Date:        getString(props, "date"),
			Version:     int(getFloat(props, "version")),
			Source:      getString(props, "source"),
			EtfType:     getString(props, "etf_type"),
			Category:    getString(props, "category"),
			Metadata:    decodeMetadata(getString(props, "metadata_json")),
		}

		certainty := 0.0
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if id, ok := additional["id"].(string); ok {
				doc.ID = id
			}
			if c, ok := additional["certainty"].(float64); ok {
				certainty = c
			}
		}

		docs = append(docs, doc)
		certainties = append(certainties, certainty)
	}

	return docs, certainties
}

func encodeMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func decodeMetadata(raw string) map[string]string {
	if raw == "" || raw == "{}" {
		return nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil
	}
	return metadata
}

func getString(props map[string]interface{}, key string) string {
	v, _ := props[key].(string)
	return v
}

func getFloat(props map[string]interface{}, key string) float64 {
	v, _ := props[key].(float64)
	return v
}
