package ai

import "context"

// EvaluationPayload is the structured grade returned for a pseudocode submission.
type EvaluationPayload struct {
	Rating   int      `json:"rating"`
	Issue    []string `json:"issue"`
	Feedback []string `json:"feedback"`
}

// Completer sends a prompt to a text-generation model and returns the raw reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
