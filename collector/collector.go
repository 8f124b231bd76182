package collector

import (
	"context"
	"net/http"
	"time"

	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/service"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

// EmbedBatch requests are chunked so a large listing doesn't exceed the
// provider's per-request input limit.
const embedChunkSize = 50

// CollectionResult summarizes one collection run.
type CollectionResult struct {
	DomesticCount int `json:"domestic_count"`
	ForeignCount  int `json:"foreign_count"`
	DartCount     int `json:"dart_count"`
	TotalCount    int `json:"total_count"`
	Inserted      int `json:"inserted"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
}

// Collector orchestrates the three source collectors: fetch, normalize,
// embed, then hand each candidate to the ingestion policy.
type Collector struct {
	naver  *NaverCollector
	yahoo  *YahooCollector
	dart   *DartCollector
	ingest *service.IngestService
	ai     service.AIService
	cfg    config.CollectorConfig
	log    *logger.Logger
}

func NewCollector(cfg config.CollectorConfig, dartAPIKey string, ingest *service.IngestService, ai service.AIService) *Collector {
	client := &http.Client{
		Timeout: 30 * time.Second,
	}
	return &Collector{
		naver:  NewNaverCollector(cfg.NaverListURL, client),
		yahoo:  NewYahooCollector("", client),
		dart:   NewDartCollector("", dartAPIKey, client),
		ingest: ingest,
		ai:     ai,
		cfg:    cfg,
		log:    logger.New("collector"),
	}
}

// CollectDomestic collects up to max domestic ETFs and ingests them.
func (c *Collector) CollectDomestic(ctx context.Context, max int) (int, CollectionResult, error) {
	candidates, err := c.naver.Collect(ctx, max)
	if err != nil {
		return 0, CollectionResult{}, err
	}
	result := c.ingestCandidates(ctx, candidates)
	return len(candidates), result, nil
}

// CollectForeign collects the configured foreign tickers and ingests them.
func (c *Collector) CollectForeign(ctx context.Context, tickers []string) (int, CollectionResult, error) {
	if len(tickers) == 0 {
		tickers = c.cfg.ForeignTickers
	}
	candidates, err := c.yahoo.Collect(ctx, tickers)
	if err != nil {
		return 0, CollectionResult{}, err
	}
	result := c.ingestCandidates(ctx, candidates)
	return len(candidates), result, nil
}

// CollectDart collects recent ETF disclosures and ingests them.
func (c *Collector) CollectDart(ctx context.Context) (int, CollectionResult, error) {
	candidates, err := c.dart.Collect(ctx, c.cfg.DartDaysBack)
	if err != nil {
		return 0, CollectionResult{}, err
	}
	result := c.ingestCandidates(ctx, candidates)
	return len(candidates), result, nil
}

// CollectAll runs every source. A failing source is logged and skipped so the
// others still run, matching the per-source error tolerance of the scheduled
// job.
func (c *Collector) CollectAll(ctx context.Context) CollectionResult {
	var total CollectionResult

	c.log.Info("starting full collection")

	if count, result, err := c.CollectDomestic(ctx, c.cfg.DomesticMax); err != nil {
		c.log.WithError(err).Error("domestic collection failed")
	} else {
		total.DomesticCount = count
		total.merge(result)
	}

	if count, result, err := c.CollectForeign(ctx, nil); err != nil {
		c.log.WithError(err).Error("foreign collection failed")
	} else {
		total.ForeignCount = count
		total.merge(result)
	}

	if count, result, err := c.CollectDart(ctx); err != nil {
		c.log.WithError(err).Error("disclosure collection failed")
	} else {
		total.DartCount = count
		total.merge(result)
	}

	total.TotalCount = total.DomesticCount + total.ForeignCount + total.DartCount
	c.log.Infof("collection complete: %d items, %d inserted, %d skipped, %d failed",
		total.TotalCount, total.Inserted, total.Skipped, total.Failed)
	return total
}

func (c *Collector) ingestCandidates(ctx context.Context, candidates []types.CandidateDocument) CollectionResult {
	var result CollectionResult

	for start := 0; start < len(candidates); start += embedChunkSize {
		end := start + embedChunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		chunk := candidates[start:end]

		texts := make([]string, len(chunk))
		for i, candidate := range chunk {
			texts[i] = candidate.Content
		}

		vectors, err := c.ai.EmbedBatch(ctx, texts)
		if err != nil {
			c.log.WithError(err).Errorf("failed to embed chunk %d-%d", start, end)
			result.Failed += len(chunk)
			continue
		}

		inserted, skipped, failed := c.ingest.SubmitBatch(ctx, chunk, vectors)
		result.Inserted += inserted
		result.Skipped += skipped
		result.Failed += failed
	}

	c.pruneInserted(ctx, candidates)
	return result
}

// pruneInserted enforces the per-identifier retention cap after a batch.
func (c *Collector) pruneInserted(ctx context.Context, candidates []types.CandidateDocument) {
	keep := c.ingest.MaxVersionsPerETF()
	if keep <= 0 {
		return
	}
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if seen[candidate.EtfCode] {
			continue
		}
		seen[candidate.EtfCode] = true
		if _, err := c.ingest.Prune(ctx, candidate.EtfCode, keep); err != nil {
			c.log.WithError(err).Warnf("failed to prune %s", candidate.EtfCode)
		}
	}
}

func (r *CollectionResult) merge(other CollectionResult) {
	r.Inserted += other.Inserted
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}
