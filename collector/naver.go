package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

const naverUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// NaverCollector fetches the domestic ETF listing from the Naver Finance
// item-list API (JSON, ~1000 ETFs).
type NaverCollector struct {
	listURL string
	client  *http.Client
	log     *logger.Logger
}

func NewNaverCollector(listURL string, client *http.Client) *NaverCollector {
	return &NaverCollector{
		listURL: listURL,
		client:  client,
		log:     logger.New("collector.naver"),
	}
}

type naverListResponse struct {
	ResultCode string `json:"resultCode"`
	Result     struct {
		EtfItemList []naverEtfItem `json:"etfItemList"`
	} `json:"result"`
}

type naverEtfItem struct {
	ItemCode   string  `json:"itemcode"`
	ItemName   string  `json:"itemname"`
	NowVal     float64 `json:"nowVal"`
	ChangeRate float64 `json:"changeRate"`
	Nav        float64 `json:"nav"`
	Quant      float64 `json:"quant"`
}

// Collect returns normalized candidates for up to max domestic ETFs
// (max <= 0 means all).
func (c *NaverCollector) Collect(ctx context.Context, max int) ([]types.CandidateDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", naverUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch etf list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("etf list request returned %d", resp.StatusCode)
	}

	var list naverListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode etf list: %w", err)
	}
	if list.ResultCode != "success" {
		return nil, fmt.Errorf("etf list API returned %q", list.ResultCode)
	}

	var candidates []types.CandidateDocument
	for _, item := range list.Result.EtfItemList {
		if item.ItemCode == "" || item.ItemName == "" {
			continue
		}
		candidates = append(candidates, normalizeNaverItem(item))
		if max > 0 && len(candidates) >= max {
			break
		}
	}

	c.log.Infof("collected %d domestic ETFs", len(candidates))
	return candidates, nil
}

func normalizeNaverItem(item naverEtfItem) types.CandidateDocument {
	content := fmt.Sprintf(
		"ETF 이름: %s\nETF 코드: %s\n현재가: %.0f원\nNAV: %.2f원\n등락률: %.2f%%\n거래량: %.0f",
		item.ItemName, item.ItemCode, item.NowVal, item.Nav, item.ChangeRate, item.Quant,
	)

	return types.CandidateDocument{
		EtfCode: item.ItemCode,
		EtfName: item.ItemName,
		Content: content,
		Source:  types.SourceNaver,
		EtfType: types.EtfTypeDomestic,
		Metadata: map[string]string{
			"price":       fmt.Sprintf("%.0f", item.NowVal),
			"nav":         fmt.Sprintf("%.2f", item.Nav),
			"change_rate": fmt.Sprintf("%.2f%%", item.ChangeRate),
			"volume":      fmt.Sprintf("%.0f", item.Quant),
			"url":         fmt.Sprintf("https://finance.naver.com/item/main.naver?code=%s", item.ItemCode),
		},
	}
}
