package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyunwoojo/etf-rag-agent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const naverListFixture = `{
	"resultCode": "success",
	"result": {
		"etfItemList": [
			{"itemcode": "069500", "itemname": "KODEX 200", "nowVal": 35000, "changeRate": 0.52, "nav": 35012.34, "quant": 4200000},
			{"itemcode": "114800", "itemname": "KODEX 인버스", "nowVal": 4300, "changeRate": -0.46, "nav": 4301.11, "quant": 9100000},
			{"itemcode": "", "itemname": "broken row"}
		]
	}
}`

func TestNaverCollect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(naverListFixture))
	}))
	defer server.Close()

	collector := NewNaverCollector(server.URL, server.Client())
	candidates, err := collector.Collect(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "069500", first.EtfCode)
	assert.Equal(t, "KODEX 200", first.EtfName)
	assert.Equal(t, types.SourceNaver, first.Source)
	assert.Equal(t, types.EtfTypeDomestic, first.EtfType)
	assert.Contains(t, first.Content, "현재가: 35000원")
	assert.Contains(t, first.Content, "등락률: 0.52%")
	assert.Equal(t, "35000", first.Metadata["price"])
	assert.Contains(t, first.Metadata["url"], "069500")
}

func TestNaverCollectRespectsMax(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(naverListFixture))
	}))
	defer server.Close()

	collector := NewNaverCollector(server.URL, server.Client())
	candidates, err := collector.Collect(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestNaverCollectAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCode": "fail", "result": {"etfItemList": []}}`))
	}))
	defer server.Close()

	collector := NewNaverCollector(server.URL, server.Client())
	_, err := collector.Collect(context.Background(), 0)
	assert.Error(t, err)
}

func TestNaverCollectHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	collector := NewNaverCollector(server.URL, server.Client())
	_, err := collector.Collect(context.Background(), 0)
	assert.Error(t, err)
}
