package models

// AskRequest is the request body for the ask endpoint.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AskResponse is the response for an answered question.
type AskResponse struct {
	Question  string           `json:"question"`
	Answer    string           `json:"answer"`
	Sources   []RetrievedChunk `json:"sources,omitempty"`
	Model     string           `json:"model"`
	QueryTime int64            `json:"query_time_ms"`
}

// RetrieveRequest is the request body for the retrieve endpoint.
type RetrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// RetrieveResponse holds retrieved chunks without generation.
type RetrieveResponse struct {
	Chunks    []RetrievedChunk `json:"chunks"`
	QueryTime int64            `json:"query_time_ms"`
}
