// Package llm abstracts the generative fallback consulted for questions the
// rule analyzers cannot answer.
package llm

import (
	"context"
	"errors"
)

// Client is the single-attempt question interface. Implementations honor ctx
// cancellation; the orchestrator owns the timeout and never retries.
type Client interface {
	Answer(ctx context.Context, input AskInput) (string, error)
}

// AskInput carries the question plus the snapshot context the model answers
// against.
type AskInput struct {
	Question        string
	SnapshotSummary string
	Phase           string
	Focus           []string
}

// ErrNotConfigured is returned when no provider is wired.
var ErrNotConfigured = errors.New("llm client not configured")

// PlaceholderClient keeps the orchestrator total when no provider is wired;
// the AI path degrades to rules on ErrNotConfigured.
type PlaceholderClient struct{}

// Answer always reports the missing configuration.
func (PlaceholderClient) Answer(ctx context.Context, input AskInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotConfigured
}

var _ Client = PlaceholderClient{}
