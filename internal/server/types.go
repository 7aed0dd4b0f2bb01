package server

import "github.com/kiralabs/launchpad/internal/workflow"

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK     bool   `json:"ok"`     // Service health status
	Wallet string `json:"wallet"` // Fee payer address
}

// IssueRequest is the body of POST /v1/tokens.
type IssueRequest struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	URI      string `json:"uri"`
	Decimals *uint8 `json:"decimals"` // optional, defaults to 9
	Supply   uint64 `json:"supply"`
}

// IssueResponse reports the run outcome plus the token identity.
type IssueResponse struct {
	Run      *workflow.Run `json:"run"`
	Mint     string        `json:"mint"`
	Decimals uint8         `json:"decimals"`
}

// SwapResponse reports the run outcome plus the executed quote.
type SwapResponse struct {
	Run   *workflow.Run `json:"run"`
	Quote any           `json:"quote"`
	Pool  string        `json:"pool"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"`
}

// AIAskRequest represents a natural language query request
type AIAskRequest struct {
	Question string `json:"question"` // Natural language question about launch/swap history
	Model    string `json:"model"`    // Optional AI model override
}

// AIAskResponse represents the response from an AI query
type AIAskResponse struct {
	SQL    string `json:"sql"`
	Answer string `json:"answer"`
	TookMs int64  `json:"took_ms"`
}
