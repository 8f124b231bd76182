package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/types"
	"github.com/hyunwoojo/etf-rag-agent/utils"
)

// answerDeadline caps the whole embed-search-generate sequence, separate
// from the HTTP client timeouts of the individual providers.
const answerDeadline = 28 * time.Second

const (
	sourcePreviewLength  = 200
	summaryPreviewLength = 500
)

// NoGroundingAnswer is returned verbatim when no document passes the
// similarity threshold.
const NoGroundingAnswer = "죄송합니다. 질문과 관련된 ETF 정보를 찾을 수 없습니다."

const ragSystemPrompt = `당신은 ETF(상장지수펀드) 투자 전문가입니다.
주어진 문서를 바탕으로 사용자의 질문에 정확하고 유용한 답변을 제공하세요.

답변 시 주의사항:
1. 제공된 문서의 정보만을 사용하여 답변하세요
2. 확실하지 않은 정보는 추측하지 말고, 문서에 없다고 명시하세요
3. 답변의 근거가 되는 문서 번호를 [문서 N] 형태로 인용하세요
4. 투자 조언이 아닌 정보 제공에 초점을 맞추세요
5. 명확하고 구조화된 답변을 제공하세요`

// ErrDeadlineExceeded reports that an answer ran past the overall deadline.
// It is distinct from other transient failures so callers can react
// differently.
var ErrDeadlineExceeded = errors.New("answer deadline exceeded")

// ErrEmptyQuestion rejects a blank question before any I/O.
var ErrEmptyQuestion = errors.New("question must not be empty")

// ErrETFNotFound reports a summary request for an unknown etf_code.
var ErrETFNotFound = errors.New("etf not found")

// QueryService answers questions from retrieved documents only.
type QueryService struct {
	store database.VectorStore
	ai    AIService
	cfg   config.RAGConfig
	log   *logger.Logger
}

func NewQueryService(store database.VectorStore, ai AIService, cfg config.RAGConfig) *QueryService {
	return &QueryService{
		store: store,
		ai:    ai,
		cfg:   cfg,
		log:   logger.New("query"),
	}
}

// Answer runs the retrieval-augmented pipeline for question. topK <= 0 and
// temperature < 0 fall back to the configured defaults; the similarity
// threshold is configuration-scoped and not overridable per call. filters
// are exact-match conditions (etf_type, etf_code). The store applies the
// topK cap before the threshold is checked here, so fewer than topK sources
// can come back even when more qualifying documents exist.
func (s *QueryService) Answer(ctx context.Context, question string, topK int, filters map[string]string, temperature float64) (*types.AnswerResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if temperature < 0 {
		temperature = s.cfg.Temperature
	}

	ctx, cancel := context.WithTimeout(ctx, answerDeadline)
	defer cancel()

	response, err := s.answer(ctx, question, topK, filters, temperature)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrDeadlineExceeded
		}
		return nil, err
	}
	return response, nil
}

func (s *QueryService) answer(ctx context.Context, question string, topK int, filters map[string]string, temperature float64) (*types.AnswerResponse, error) {
	s.log.Infof("processing query: %s", utils.TruncateString(question, 80))

	queryVector, err := s.ai.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := s.store.Search(ctx, queryVector, topK, filters)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	// Threshold applies after the store-side cap.
	relevant := results[:0]
	for _, result := range results {
		if result.Certainty >= s.cfg.SimilarityThreshold {
			relevant = append(relevant, result)
		}
	}

	if len(relevant) == 0 {
		s.log.Warn("no documents passed the similarity threshold")
		return &types.AnswerResponse{
			Answer:     NoGroundingAnswer,
			Sources:    []types.Source{},
			NumSources: 0,
			Grounded:   false,
			Question:   question,
		}, nil
	}

	answer, err := s.ai.Generate(ctx, buildPrompt(question, relevant), ragSystemPrompt, temperature, s.cfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	sources := make([]types.Source, 0, len(relevant))
	for i, result := range relevant {
		doc := result.Document
		sources = append(sources, types.Source{
			Rank:      i + 1,
			EtfCode:   doc.EtfCode,
			EtfName:   doc.EtfName,
			Source:    doc.Source,
			EtfType:   doc.EtfType,
			Date:      doc.Date,
			Relevance: result.Certainty,
			Preview:   utils.TruncateString(doc.Content, sourcePreviewLength),
		})
	}

	s.log.Infof("answered with %d sources", len(sources))
	return &types.AnswerResponse{
		Answer:     answer,
		Sources:    sources,
		NumSources: len(sources),
		Grounded:   true,
		Question:   question,
	}, nil
}

// Summarize returns the latest version's key attributes for etfCode plus the
// stored version count. The lookup is filter-only; no similarity score is
// meaningful here and none is surfaced.
func (s *QueryService) Summarize(ctx context.Context, etfCode string) (*types.ETFSummary, error) {
	if strings.TrimSpace(etfCode) == "" {
		return nil, ErrETFNotFound
	}

	docs, err := s.store.FetchAll(ctx, map[string]string{"etf_code": etfCode})
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrETFNotFound
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Version > docs[j].Version
	})
	latest := docs[0]

	return &types.ETFSummary{
		EtfCode:        etfCode,
		EtfName:        latest.EtfName,
		EtfType:        latest.EtfType,
		Category:       latest.Category,
		Source:         latest.Source,
		LastUpdated:    latest.Date,
		ContentPreview: utils.TruncateString(latest.Content, summaryPreviewLength),
		NumVersions:    len(docs),
	}, nil
}

func buildPrompt(question string, results []types.SearchResult) string {
	var contextParts []string
	for i, result := range results {
		doc := result.Document
		contextParts = append(contextParts, fmt.Sprintf(
			"[문서 %d] %s (날짜: %s, 출처: %s)\n%s\n",
			i+1, doc.EtfName, doc.Date, doc.Source, doc.Content,
		))
	}

	return fmt.Sprintf(`다음은 관련 ETF 정보입니다:

%s

질문: %s

위 문서를 참고하여 질문에 답변해주세요.`, strings.Join(contextParts, "\n"), question)
}
