package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Source is one ranked citation backing a generated answer.
type Source struct {
	Rank      int     `json:"rank"`
	EtfCode   string  `json:"etf_code"`
	EtfName   string  `json:"etf_name"`
	Source    string  `json:"source"`
	EtfType   string  `json:"etf_type"`
	Date      string  `json:"date"`
	Relevance float64 `json:"relevance"`
	Preview   string  `json:"preview"`
}

type AnswerResponse struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	NumSources int      `json:"num_sources"`
	Grounded   bool     `json:"grounded"`
	Question   string   `json:"question"`
}

type ETFSummary struct {
	EtfCode        string `json:"etf_code"`
	EtfName        string `json:"etf_name"`
	EtfType        string `json:"etf_type"`
	Category       string `json:"category"`
	Source         string `json:"source"`
	LastUpdated    string `json:"last_updated"`
	ContentPreview string `json:"content_preview"`
	NumVersions    int    `json:"num_versions"`
}

type CollectionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DomesticCount int    `json:"domestic_count"`
	ForeignCount  int    `json:"foreign_count"`
	DartCount     int    `json:"dart_count"`
	TotalCount    int    `json:"total_count"`
}

type HealthResponse struct {
	Healthy        bool   `json:"healthy"`
	Status         string `json:"status"`
	Version        string `json:"version"`
	TotalDocuments int    `json:"total_documents"`
	Timestamp      string `json:"timestamp"`
}
