package api

// HealthResponse is returned by /health
type HealthResponse struct {
	Status string `json:"status"`
	Symbol string `json:"symbol"`
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
