package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

const defaultDartBaseURL = "https://opendart.fss.or.kr/api"

// Disclosures are kept only when the report name mentions one of these.
var etfReportKeywords = []string{"ETF", "상장지수", "집합투자"}

// DartCollector fetches ETF-related disclosure filings from the Korean FSS
// DART open API.
type DartCollector struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logger.Logger
}

func NewDartCollector(baseURL, apiKey string, client *http.Client) *DartCollector {
	if baseURL == "" {
		baseURL = defaultDartBaseURL
	}
	return &DartCollector{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		log:     logger.New("collector.dart"),
	}
}

type dartListResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	List    []dartDisclosure `json:"list"`
}

type dartDisclosure struct {
	CorpCode   string `json:"corp_code"`
	CorpName   string `json:"corp_name"`
	ReportName string `json:"report_nm"`
	ReceiptNo  string `json:"rcept_no"`
	ReceiptDt  string `json:"rcept_dt"`
	FilerName  string `json:"flr_nm"`
}

// Collect returns normalized candidates for ETF-related disclosures filed in
// the last daysBack days.
func (c *DartCollector) Collect(ctx context.Context, daysBack int) ([]types.CandidateDocument, error) {
	if c.apiKey == "" {
		c.log.Warn("DART API key not set, skipping disclosure collection")
		return nil, nil
	}
	if daysBack <= 0 {
		daysBack = 30
	}

	now := time.Now()
	params := url.Values{}
	params.Set("crtfc_key", c.apiKey)
	params.Set("bgn_de", now.AddDate(0, 0, -daysBack).Format("20060102"))
	params.Set("end_de", now.Format("20060102"))
	params.Set("page_no", "1")
	params.Set("page_count", "100")

	reqURL := fmt.Sprintf("%s/list.json?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch disclosures: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("disclosure request returned %d", resp.StatusCode)
	}

	var list dartListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode disclosures: %w", err)
	}
	if list.Status != "000" {
		return nil, fmt.Errorf("DART API error %s: %s", list.Status, list.Message)
	}

	var candidates []types.CandidateDocument
	for _, disclosure := range list.List {
		if disclosure.ReceiptNo == "" || !isEtfReport(disclosure.ReportName) {
			continue
		}
		candidates = append(candidates, normalizeDartDisclosure(disclosure))
	}

	c.log.Infof("collected %d ETF disclosures", len(candidates))
	return candidates, nil
}

func isEtfReport(reportName string) bool {
	for _, keyword := range etfReportKeywords {
		if strings.Contains(reportName, keyword) {
			return true
		}
	}
	return false
}

func normalizeDartDisclosure(disclosure dartDisclosure) types.CandidateDocument {
	content := fmt.Sprintf(
		"공시 보고서: %s\n회사명: %s\n제출인: %s\n접수일자: %s\n접수번호: %s",
		disclosure.ReportName, disclosure.CorpName, disclosure.FilerName,
		disclosure.ReceiptDt, disclosure.ReceiptNo,
	)

	return types.CandidateDocument{
		EtfCode:  disclosure.ReceiptNo,
		EtfName:  disclosure.ReportName,
		Content:  content,
		Source:   types.SourceDart,
		EtfType:  types.EtfTypeDisclosure,
		Category: "공시",
		Metadata: map[string]string{
			"corp_code": disclosure.CorpCode,
			"corp_name": disclosure.CorpName,
			"filer":     disclosure.FilerName,
			"filed_at":  disclosure.ReceiptDt,
		},
	}
}
