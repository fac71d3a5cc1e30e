package dto

import "traffic-forecast-service/internal/domain"

type SearchRequest struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Modes []string `json:"modes"`
}

// SelectRequest picks candidate indexes. Omitted indexes keep the role as is.
type SelectRequest struct {
	StartIndex *int `json:"start_index"`
	EndIndex   *int `json:"end_index"`
}

type StateResponse struct {
	State *domain.SessionState `json:"state"`
}

type ErrorResponse struct {
	Error string               `json:"error"`
	Code  string               `json:"code"`
	State *domain.SessionState `json:"state,omitempty"`
}
