package service

import "context"

// CompletionClient performs one remote text-completion call. Implementations
// do not retry on their own; timeout and retry policy belongs to the Invoker.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
