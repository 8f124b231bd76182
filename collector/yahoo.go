package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

const defaultYahooQuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"

// YahooCollector fetches foreign (US-listed) ETF market data from the Yahoo
// Finance quote API.
type YahooCollector struct {
	quoteURL string
	client   *http.Client
	log      *logger.Logger
}

func NewYahooCollector(quoteURL string, client *http.Client) *YahooCollector {
	if quoteURL == "" {
		quoteURL = defaultYahooQuoteURL
	}
	return &YahooCollector{
		quoteURL: quoteURL,
		client:   client,
		log:      logger.New("collector.yahoo"),
	}
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type yahooQuote struct {
	Symbol                      string  `json:"symbol"`
	LongName                    string  `json:"longName"`
	ShortName                   string  `json:"shortName"`
	QuoteType                   string  `json:"quoteType"`
	RegularMarketPrice          float64 `json:"regularMarketPrice"`
	NavPrice                    float64 `json:"navPrice"`
	NetAssets                   float64 `json:"netAssets"`
	TrailingAnnualDividendYield float64 `json:"trailingAnnualDividendYield"`
	FiftyTwoWeekHigh            float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow             float64 `json:"fiftyTwoWeekLow"`
	FullExchangeName            string  `json:"fullExchangeName"`
}

// Collect returns normalized candidates for the given tickers.
func (c *YahooCollector) Collect(ctx context.Context, tickers []string) ([]types.CandidateDocument, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s?symbols=%s", c.quoteURL, url.QueryEscape(strings.Join(tickers, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", naverUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request returned %d", resp.StatusCode)
	}

	var quotes yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}
	if quotes.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote API error: %s", quotes.QuoteResponse.Error.Description)
	}

	var candidates []types.CandidateDocument
	for _, quote := range quotes.QuoteResponse.Result {
		if quote.Symbol == "" {
			continue
		}
		candidates = append(candidates, normalizeYahooQuote(quote))
	}

	c.log.Infof("collected %d foreign ETFs", len(candidates))
	return candidates, nil
}

func normalizeYahooQuote(quote yahooQuote) types.CandidateDocument {
	name := quote.LongName
	if name == "" {
		name = quote.ShortName
	}

	content := fmt.Sprintf(
		"ETF 이름: %s\n티커: %s\n거래소: %s\n\n현재가: $%.2f\nNAV: $%.2f\n총 자산: $%.0f\n배당수익률: %.2f%%\n52주 최고가: $%.2f\n52주 최저가: $%.2f",
		name, quote.Symbol, quote.FullExchangeName,
		quote.RegularMarketPrice, quote.NavPrice, quote.NetAssets,
		quote.TrailingAnnualDividendYield*100,
		quote.FiftyTwoWeekHigh, quote.FiftyTwoWeekLow,
	)

	return types.CandidateDocument{
		EtfCode:  quote.Symbol,
		EtfName:  name,
		Content:  content,
		Source:   types.SourceYahoo,
		EtfType:  types.EtfTypeForeign,
		Category: quote.QuoteType,
		Metadata: map[string]string{
			"price":      fmt.Sprintf("%.2f", quote.RegularMarketPrice),
			"nav":        fmt.Sprintf("%.2f", quote.NavPrice),
			"net_assets": fmt.Sprintf("%.0f", quote.NetAssets),
			"yield":      fmt.Sprintf("%.4f", quote.TrailingAnnualDividendYield),
			"exchange":   quote.FullExchangeName,
		},
	}
}
