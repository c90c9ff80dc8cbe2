package http

import "webscout/internal/model"

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query string `json:"query"`
	// Limit trims the result list; zero keeps everything the searcher returns.
	Limit int `json:"limit,omitempty"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Success bool                 `json:"success"`
	Data    []model.SearchResult `json:"data"`
}

// FetchRequest is the body of POST /v1/fetch.
type FetchRequest struct {
	URL string `json:"url"`
}

// ErrorResponse is the error envelope for every non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
}
