package completion

import "context"

// FinishReason reports why the completion service stopped generating.
// The orchestrator treats it as authoritative when classifying outcomes.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
)

// Request is one completion call.
type Request struct {
	System          string
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
	ForceJSONObject bool
}

// Usage reports token consumption for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the service's reply.
type Response struct {
	Content      string
	FinishReason FinishReason
	Usage        Usage
}

// Service is the completion capability the analysis engine consumes. It is a
// black box from the engine's point of view; implementations should honor
// ctx cancellation.
type Service interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
