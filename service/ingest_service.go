package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/types"
	"github.com/hyunwoojo/etf-rag-agent/utils"
)

// ErrDuplicate marks a submission skipped because a document with the same
// etf_code and content hash is already stored. A skip is not a failure.
var ErrDuplicate = errors.New("duplicate document")

// ErrInvalidCandidate rejects a candidate missing its etf_code or content.
var ErrInvalidCandidate = errors.New("candidate missing etf_code or content")

// IngestService decides admission and metadata for candidate documents.
//
// Version assignment is a read-then-write without a transaction; two
// concurrent submissions for the same etf_code can compute the same version
// and both land. The collectors run sequentially, so this stays an accepted
// approximation rather than an enforced invariant.
type IngestService struct {
	store database.VectorStore
	cfg   config.VersioningConfig
	log   *logger.Logger
}

func NewIngestService(store database.VectorStore, cfg config.VersioningConfig) *IngestService {
	return &IngestService{
		store: store,
		cfg:   cfg,
		log:   logger.New("ingest"),
	}
}

// Submit admits one candidate with its caller-supplied embedding. It returns
// the store-assigned id, ErrDuplicate when the candidate is skipped, or the
// store's error unmodified.
func (s *IngestService) Submit(ctx context.Context, candidate *types.CandidateDocument, vector []float32) (string, error) {
	if candidate == nil || candidate.EtfCode == "" || candidate.Content == "" {
		return "", ErrInvalidCandidate
	}

	contentHash := utils.Fingerprint(candidate.Content)

	if s.cfg.EnableDuplicateCheck {
		existing, err := s.store.FetchAll(ctx, map[string]string{
			"etf_code":     candidate.EtfCode,
			"content_hash": contentHash,
		})
		if err != nil {
			return "", fmt.Errorf("duplicate check failed: %w", err)
		}
		if len(existing) > 0 {
			s.log.WithField("etf_code", candidate.EtfCode).Info("duplicate document, skipping")
			return "", ErrDuplicate
		}
	}

	version := 1
	if s.cfg.KeepHistory {
		latest, err := s.latestVersion(ctx, candidate.EtfCode)
		if err != nil {
			return "", fmt.Errorf("version lookup failed: %w", err)
		}
		version = latest + 1
	}

	doc := &types.Document{
		EtfCode:     candidate.EtfCode,
		EtfName:     candidate.EtfName,
		Content:     candidate.Content,
		ContentHash: contentHash,
		Date:        time.Now().Format(time.RFC3339),
		Version:     version,
		Source:      candidate.Source,
		EtfType:     candidate.EtfType,
		Category:    candidate.Category,
		Metadata:    candidate.Metadata,
	}

	id, err := s.store.Insert(ctx, doc, vector)
	if err != nil {
		return "", err
	}
	s.log.WithField("etf_code", candidate.EtfCode).Infof("inserted document v%d", version)
	return id, nil
}

// SubmitBatch submits candidates in order with their matching vectors.
// Duplicates are counted as skipped; other errors count as failures and do
// not stop the batch.
func (s *IngestService) SubmitBatch(ctx context.Context, candidates []types.CandidateDocument, vectors [][]float32) (inserted, skipped, failed int) {
	for i := range candidates {
		var vector []float32
		if i < len(vectors) {
			vector = vectors[i]
		}
		_, err := s.Submit(ctx, &candidates[i], vector)
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, ErrDuplicate):
			skipped++
		default:
			s.log.WithError(err).Errorf("failed to submit %s", candidates[i].EtfCode)
			failed++
		}
	}
	s.log.Infof("batch complete: %d inserted, %d skipped, %d failed", inserted, skipped, failed)
	return inserted, skipped, failed
}

// Prune deletes all but the keepCount most recent versions (by version,
// descending) for etfCode. Read and delete are not atomic; a concurrent
// insert can be miscounted.
func (s *IngestService) Prune(ctx context.Context, etfCode string, keepCount int) (deleted int, err error) {
	docs, err := s.store.FetchAll(ctx, map[string]string{"etf_code": etfCode})
	if err != nil {
		return 0, err
	}
	if len(docs) <= keepCount {
		return 0, nil
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Version > docs[j].Version
	})

	for _, doc := range docs[keepCount:] {
		if err := s.store.Delete(ctx, doc.ID); err != nil {
			return deleted, fmt.Errorf("failed to delete version %d of %s: %w", doc.Version, etfCode, err)
		}
		deleted++
	}
	s.log.Infof("pruned %s: kept %d, deleted %d", etfCode, keepCount, deleted)
	return deleted, nil
}

// MaxVersionsPerETF exposes the configured retention cap for callers that
// prune right after inserting.
func (s *IngestService) MaxVersionsPerETF() int {
	return s.cfg.MaxVersionsPerETF
}

func (s *IngestService) latestVersion(ctx context.Context, etfCode string) (int, error) {
	docs, err := s.store.FetchAll(ctx, map[string]string{"etf_code": etfCode})
	if err != nil {
		return 0, err
	}
	latest := 0
	for _, doc := range docs {
		if doc.Version > latest {
			latest = doc.Version
		}
	}
	return latest, nil
}
