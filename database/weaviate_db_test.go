package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func TestBuildWhereFilter(t *testing.T) {
	assert.Nil(t, buildWhereFilter(nil))
	assert.Nil(t, buildWhereFilter(map[string]string{}))
	assert.Nil(t, buildWhereFilter(map[string]string{"etf_type": ""}))

	single := buildWhereFilter(map[string]string{"etf_code": "069500"})
	require.NotNil(t, single)
	assert.Contains(t, single.String(), "069500")

	combined := buildWhereFilter(map[string]string{
		"etf_code": "069500",
		"etf_type": "domestic",
	})
	require.NotNil(t, combined)
	assert.Contains(t, combined.String(), "And")
	assert.Contains(t, combined.String(), "069500")
	assert.Contains(t, combined.String(), "domestic")
}

func TestParseDocuments(t *testing.T) {
	data := map[string]models.JSONObject{
		"Get": map[string]interface{}{
			"ETFDocument": []interface{}{
				map[string]interface{}{
					"etf_code":      "069500",
					"etf_name":      "KODEX 200",
					"content":       "코스피 200 추종",
					"content_hash":  "abc123",
					"date":          "2025-06-02T09:00:00Z",
					"version":       float64(3),
					"source":        "naver_finance",
					"etf_type":      "domestic",
					"category":      "",
					"metadata_json": `{"price":"35000"}`,
					"_additional": map[string]interface{}{
						"id":        "uuid-1",
						"certainty": 0.91,
					},
				},
				map[string]interface{}{
					"etf_code": "114800",
					"version":  float64(1),
				},
			},
		},
	}

	docs, certainties := parseDocuments(data, "ETFDocument")
	require.Len(t, docs, 2)
	require.Len(t, certainties, 2)

	assert.Equal(t, "uuid-1", docs[0].ID)
	assert.Equal(t, "069500", docs[0].EtfCode)
	assert.Equal(t, 3, docs[0].Version)
	assert.Equal(t, map[string]string{"price": "35000"}, docs[0].Metadata)
	assert.Equal(t, 0.91, certainties[0])

	// Missing _additional leaves zero values.
	assert.Empty(t, docs[1].ID)
	assert.Zero(t, certainties[1])
}

func TestParseDocumentsEmpty(t *testing.T) {
	docs, certainties := parseDocuments(map[string]models.JSONObject{}, "ETFDocument")
	assert.Empty(t, docs)
	assert.Empty(t, certainties)

	docs, _ = parseDocuments(map[string]models.JSONObject{
		"Get": map[string]interface{}{"OtherClass": []interface{}{}},
	}, "ETFDocument")
	assert.Empty(t, docs)
}

func TestMetadataEncoding(t *testing.T) {
	assert.Equal(t, "{}", encodeMetadata(nil))
	assert.Equal(t, "{}", encodeMetadata(map[string]string{}))
	assert.Nil(t, decodeMetadata(""))
	assert.Nil(t, decodeMetadata("{}"))
	assert.Nil(t, decodeMetadata("not json"))

	original := map[string]string{"price": "35000", "nav": "35012.34"}
	assert.Equal(t, original, decodeMetadata(encodeMetadata(original)))
}

func TestDocumentClassObject(t *testing.T) {
	class := documentClassObject("ETFDocument")
	assert.Equal(t, "ETFDocument", class.Class)
	assert.Equal(t, "none", class.Vectorizer)
	assert.Equal(t, "hnsw", class.VectorIndexType)

	names := make(map[string]bool)
	for _, prop := range class.Properties {
		names[prop.Name] = true
	}
	for _, expected := range []string{"etf_code", "content", "content_hash", "version", "source", "etf_type", "metadata_json"} {
		assert.True(t, names[expected], expected)
	}
}
