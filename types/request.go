package types

type QueryRequest struct {
	Question    string   `json:"question"`
	EtfType     string   `json:"etf_type,omitempty"`
	EtfCode     string   `json:"etf_code,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type CollectionRequest struct {
	Domestic    bool `json:"domestic"`
	Foreign     bool `json:"foreign"`
	Dart        bool `json:"dart"`
	DomesticMax int  `json:"domestic_max,omitempty"`
}
