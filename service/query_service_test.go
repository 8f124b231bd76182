package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	answer        string
	embedCalls    int
	generateCalls int
	lastPrompt    string
	lastSystem    string
}

func (f *fakeAI) Embed(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls++
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

func (f *fakeAI) Generate(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	f.generateCalls++
	f.lastPrompt = prompt
	f.lastSystem = systemPrompt
	return f.answer, nil
}

func ragConfig() config.RAGConfig {
	return config.RAGConfig{
		TopK:                5,
		SimilarityThreshold: 0.7,
		Temperature:         0.3,
		MaxTokens:           1024,
	}
}

func searchResult(code, name, content string, certainty float64) types.SearchResult {
	return types.SearchResult{
		Document: types.Document{
			EtfCode: code,
			EtfName: name,
			Content: content,
			Date:    "2025-06-02T09:00:00Z",
			Source:  types.SourceNaver,
			EtfType: types.EtfTypeDomestic,
		},
		Certainty: certainty,
	}
}

func TestAnswerGrounded(t *testing.T) {
	store := &fakeStore{results: []types.SearchResult{
		searchResult("069500", "KODEX 200", "코스피 200 지수를 추종하는 ETF", 0.92),
		searchResult("114800", "KODEX 인버스", "코스피 200 선물 인버스 ETF", 0.81),
	}}
	ai := &fakeAI{answer: "KODEX 200은 코스피 200 지수를 추종합니다."}
	query := NewQueryService(store, ai, ragConfig())

	response, err := query.Answer(context.Background(), "KODEX 200은 무엇을 추종하나요?", 0, nil, -1)
	require.NoError(t, err)

	assert.True(t, response.Grounded)
	assert.Equal(t, ai.answer, response.Answer)
	require.Equal(t, 2, response.NumSources)
	assert.Equal(t, 1, response.Sources[0].Rank)
	assert.Equal(t, "069500", response.Sources[0].EtfCode)
	assert.Equal(t, 0.92, response.Sources[0].Relevance)
	assert.Equal(t, 2, response.Sources[1].Rank)

	// The generated prompt carries the retrieved documents and the question.
	assert.Contains(t, ai.lastPrompt, "[문서 1] KODEX 200")
	assert.Contains(t, ai.lastPrompt, "[문서 2] KODEX 인버스")
	assert.Contains(t, ai.lastPrompt, "KODEX 200은 무엇을 추종하나요?")
	assert.Equal(t, ragSystemPrompt, ai.lastSystem)
}

func TestAnswerFiltersBelowThreshold(t *testing.T) {
	store := &fakeStore{results: []types.SearchResult{
		searchResult("069500", "KODEX 200", "relevant", 0.92),
		searchResult("114800", "KODEX 인버스", "barely off", 0.69),
	}}
	ai := &fakeAI{answer: "answer"}
	query := NewQueryService(store, ai, ragConfig())

	response, err := query.Answer(context.Background(), "질문", 0, nil, -1)
	require.NoError(t, err)

	require.Equal(t, 1, response.NumSources)
	assert.Equal(t, "069500", response.Sources[0].EtfCode)
}

func TestAnswerNoGrounding(t *testing.T) {
	store := &fakeStore{results: []types.SearchResult{
		searchResult("069500", "KODEX 200", "unrelated", 0.41),
	}}
	ai := &fakeAI{answer: "should never be produced"}
	query := NewQueryService(store, ai, ragConfig())

	response, err := query.Answer(context.Background(), "양자컴퓨터란?", 0, nil, -1)
	require.NoError(t, err)

	assert.False(t, response.Grounded)
	assert.Equal(t, NoGroundingAnswer, response.Answer)
	assert.Zero(t, response.NumSources)
	assert.NotNil(t, response.Sources)

	// No documents passed the threshold, so the generator is never invoked.
	assert.Zero(t, ai.generateCalls)
	assert.Equal(t, 1, ai.embedCalls)
}

// stallingAI never embeds, it waits out the context like a hung provider.
type stallingAI struct {
	fakeAI
}

func (s *stallingAI) Embed(ctx context.Context, text string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAnswerDeadlineExceeded(t *testing.T) {
	query := NewQueryService(&fakeStore{}, &stallingAI{}, ragConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := query.Answer(ctx, "질문", 0, nil, -1)
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	query := NewQueryService(&fakeStore{}, &fakeAI{}, ragConfig())

	_, err := query.Answer(context.Background(), "   ", 0, nil, -1)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAnswerSourcePreviewTruncated(t *testing.T) {
	long := strings.Repeat("가", 300)
	store := &fakeStore{results: []types.SearchResult{
		searchResult("069500", "KODEX 200", long, 0.9),
	}}
	query := NewQueryService(store, &fakeAI{answer: "ok"}, ragConfig())

	response, err := query.Answer(context.Background(), "질문", 0, nil, -1)
	require.NoError(t, err)

	preview := response.Sources[0].Preview
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.Len(t, []rune(preview), sourcePreviewLength+3)
}

func TestSummarizeReturnsLatestVersion(t *testing.T) {
	store := &fakeStore{}
	ingest := NewIngestService(store, versioningConfig())
	ctx := context.Background()

	for _, content := range []string{"old snapshot", "middle snapshot", "latest snapshot"} {
		_, err := ingest.Submit(ctx, candidate("069500", content), nil)
		require.NoError(t, err)
	}

	query := NewQueryService(store, &fakeAI{}, ragConfig())
	summary, err := query.Summarize(ctx, "069500")
	require.NoError(t, err)

	assert.Equal(t, "069500", summary.EtfCode)
	assert.Equal(t, "KODEX 200", summary.EtfName)
	assert.Equal(t, 3, summary.NumVersions)
	assert.Contains(t, summary.ContentPreview, "latest snapshot")
}

func TestSummarizeUnknownCode(t *testing.T) {
	query := NewQueryService(&fakeStore{}, &fakeAI{}, ragConfig())

	_, err := query.Summarize(context.Background(), "999999")
	assert.ErrorIs(t, err, ErrETFNotFound)

	_, err = query.Summarize(context.Background(), "")
	assert.ErrorIs(t, err, ErrETFNotFound)
}
