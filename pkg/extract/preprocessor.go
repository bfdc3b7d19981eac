package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ChunkSize is the default chunk length, in runes, FilePreprocessor splits
// on.
const ChunkSize = 2000

// FilePreprocessor reads a file from disk and splits it into fixed-size
// chunks, tagging each with the file path as its SourceID.
type FilePreprocessor struct {
	ChunkSize int
}

// NewFilePreprocessor builds a FilePreprocessor that splits on size runes,
// or on the package default ChunkSize if size <= 0.
func NewFilePreprocessor(size int) *FilePreprocessor {
	if size <= 0 {
		size = ChunkSize
	}
	return &FilePreprocessor{ChunkSize: size}
}

func (p *FilePreprocessor) Chunks(ctx context.Context, filePath string) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("extract: read %s: %w", filePath, err)
	}

	text := string(data)
	runes := []rune(text)
	var chunks []Chunk
	for start := 0; start < len(runes); start += p.ChunkSize {
		end := start + p.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk == "" {
			continue
		}
		chunks = append(chunks, Chunk{SourceID: filePath, Text: chunk})
	}
	return chunks, nil
}

// LLMSummarizer implements DescriptionSummarizer by running descriptions
// through one LLMProvider completion.
type LLMSummarizer struct {
	provider LLMProvider
	model    string
}

// NewLLMSummarizer builds an LLMSummarizer over provider.
func NewLLMSummarizer(provider LLMProvider, model string) *LLMSummarizer {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLMSummarizer{provider: provider, model: model}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, descriptions []string, prompt string) (string, error) {
	if len(descriptions) == 0 {
		return "", nil
	}
	full := fmt.Sprintf("%s\n\n%s", prompt, strings.Join(descriptions, "\n- "))
	return s.provider.Complete(ctx, full, CompletionOptions{Model: s.model, MaxTokens: 256, Temperature: 0.2})
}
