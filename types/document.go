package types

// ETF document origins. EtfType distinguishes where a document's underlying
// entity trades; Source names the system the record was collected from.
const (
	EtfTypeDomestic   = "domestic"
	EtfTypeForeign    = "foreign"
	EtfTypeDisclosure = "disclosure"

	SourceNaver = "naver_finance"
	SourceYahoo = "yahoo_finance"
	SourceDart  = "dart"
)

// Document is one stored snapshot of knowledge about an ETF or disclosure.
// Documents are immutable once stored; successive snapshots of the same
// EtfCode get increasing Version numbers.
type Document struct {
	ID          string            `json:"id"`
	EtfCode     string            `json:"etf_code"`
	EtfName     string            `json:"etf_name"`
	Content     string            `json:"content"`
	ContentHash string            `json:"content_hash"`
	Date        string            `json:"date"` // RFC3339 insertion time
	Version     int               `json:"version"`
	Source      string            `json:"source"`
	EtfType     string            `json:"etf_type"`
	Category    string            `json:"category"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CandidateDocument is a normalized record produced by a source collector,
// not yet admitted to the store. The embedding is the caller's responsibility.
type CandidateDocument struct {
	EtfCode  string
	EtfName  string
	Content  string
	Source   string
	EtfType  string
	Category string
	Metadata map[string]string
}

// SearchResult couples a stored document with its similarity score
// (Weaviate certainty, 0-1).
type SearchResult struct {
	Document  Document
	Certainty float64
}
