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

const yahooQuoteFixture = `{
	"quoteResponse": {
		"result": [
			{
				"symbol": "SPY",
				"longName": "SPDR S&P 500 ETF Trust",
				"quoteType": "ETF",
				"regularMarketPrice": 512.34,
				"navPrice": 512.01,
				"netAssets": 520000000000,
				"trailingAnnualDividendYield": 0.0129,
				"fiftyTwoWeekHigh": 524.61,
				"fiftyTwoWeekLow": 409.21,
				"fullExchangeName": "NYSEArca"
			},
			{
				"symbol": "QQQ",
				"shortName": "Invesco QQQ Trust",
				"quoteType": "ETF",
				"regularMarketPrice": 438.27,
				"fullExchangeName": "NasdaqGM"
			}
		],
		"error": null
	}
}`

func TestYahooCollect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SPY,QQQ", r.URL.Query().Get("symbols"))
		w.Write([]byte(yahooQuoteFixture))
	}))
	defer server.Close()

	collector := NewYahooCollector(server.URL, server.Client())
	candidates, err := collector.Collect(context.Background(), []string{"SPY", "QQQ"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	spy := candidates[0]
	assert.Equal(t, "SPY", spy.EtfCode)
	assert.Equal(t, "SPDR S&P 500 ETF Trust", spy.EtfName)
	assert.Equal(t, types.SourceYahoo, spy.Source)
	assert.Equal(t, types.EtfTypeForeign, spy.EtfType)
	assert.Equal(t, "ETF", spy.Category)
	assert.Contains(t, spy.Content, "현재가: $512.34")
	assert.Contains(t, spy.Content, "배당수익률: 1.29%")
	assert.Equal(t, "NYSEArca", spy.Metadata["exchange"])

	// shortName fallback when longName is absent.
	assert.Equal(t, "Invesco QQQ Trust", candidates[1].EtfName)
}

func TestYahooCollectNoTickers(t *testing.T) {
	collector := NewYahooCollector("", http.DefaultClient)
	candidates, err := collector.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, candidates)
}

func TestYahooCollectAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse": {"result": [], "error": {"description": "Invalid symbols"}}}`))
	}))
	defer server.Close()

	collector := NewYahooCollector(server.URL, server.Client())
	_, err := collector.Collect(context.Background(), []string{"NOPE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid symbols")
}
