// Package extract holds the document-to-triplet collaborator interfaces:
// document chunking, triplet extraction, and description summarization.
// None of this package's core logic runs a real model; it documents the
// seams a harness wires an LLM provider into.
package extract

import (
	"context"

	"kgtour/pkg/graphmodel"
)

// Chunk is one unit of text a DocumentPreprocessor yields from a source
// document, ready to hand to a TripletExtractor.
type Chunk struct {
	SourceID string
	Text     string
}

// DocumentPreprocessor turns a source file into extractable chunks.
type DocumentPreprocessor interface {
	Chunks(ctx context.Context, filePath string) ([]Chunk, error)
}

// TripletExtractor turns chunked text into graph triplets. entityTypes, if
// non-empty, hints which entity types to prioritize.
type TripletExtractor interface {
	Extract(ctx context.Context, texts [][]string, entityTypes []string) ([]graphmodel.Triplet, error)
}

// DescriptionSummarizer condenses a node's or edge's accumulated
// descriptions into one summary string. Optional: graphmodel.Builder never
// calls it, but a harness may run Node.Descriptions/Edge.Descriptions
// through it before handing the graph to a downstream consumer.
type DescriptionSummarizer interface {
	Summarize(ctx context.Context, descriptions []string, prompt string) (string, error)
}

// CompletionOptions configures one LLMProvider.Complete call.
type CompletionOptions struct {
	Model        string
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
}

// LLMProvider abstracts the completion backend (OpenAI, Anthropic, a local
// model, ...).
type LLMProvider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	Name() string
}
