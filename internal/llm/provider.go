package llm

import "context"

// Provider is a model backend for the rewrite tier. Implementations are
// interchangeable: the rewrite engine only needs one completion per
// flagged query.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
