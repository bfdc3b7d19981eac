package extract

import (
	"context"
	"errors"
	"os"
	"testing"

	"kgtour/pkg/graphmodel"
)

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

type stubProvider struct {
	response string
	err      error
	calls    int
}

func (s *stubProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubProvider) Name() string { return "stub" }

func TestCombinedExtractor_ParsesTriplets(t *testing.T) {
	provider := &stubProvider{response: `[{"subjectName":"Alice","subjectType":"person","objectName":"Bob","objectType":"person","relation":"knows","strength":0.9}]`}
	extractor := NewCombinedExtractor(provider, "")

	triplets, err := extractor.Extract(context.Background(), [][]string{{"Alice knows Bob."}}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(triplets) != 1 {
		t.Fatalf("expected 1 triplet, got %d", len(triplets))
	}
	if triplets[0].Subject.Name != "Alice" || triplets[0].Object.Name != "Bob" {
		t.Fatalf("unexpected triplet: %+v", triplets[0])
	}
	if provider.calls != 1 {
		t.Fatalf("expected exactly one completion call, got %d", provider.calls)
	}
}

func TestCombinedExtractor_PropagatesProviderError(t *testing.T) {
	wantErr := errors.New("boom")
	provider := &stubProvider{err: wantErr}
	extractor := NewCombinedExtractor(provider, "")

	_, err := extractor.Extract(context.Background(), [][]string{{"text"}}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestSeparateExtractor_IssuesTwoCalls(t *testing.T) {
	provider := &stubProvider{response: `[]`}
	extractor := NewSeparateExtractor(provider, "")

	if _, err := extractor.Extract(context.Background(), [][]string{{"text"}}, nil); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected 2 completion calls (entities, relations), got %d", provider.calls)
	}
}

func TestStaticExtractor_ReturnsFixedTriplets(t *testing.T) {
	want := []graphmodel.Triplet{
		{
			Subject:      graphmodel.Entity{Name: "A", Type: "t"},
			Object:       graphmodel.Entity{Name: "B", Type: "t"},
			Relationship: graphmodel.Relationship{Description: "r", Strength: 1},
		},
	}
	extractor := &StaticExtractor{Triplets: want}
	got, err := extractor.Extract(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 1 || got[0].Subject.Name != "A" {
		t.Fatalf("got %+v", got)
	}
}

func TestFilePreprocessor_ChunksFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/doc.txt"
	if err := writeTestFile(path, "hello world"); err != nil {
		t.Fatalf("writeTestFile: %v", err)
	}

	p := NewFilePreprocessor(5)
	chunks, err := p.Chunks(context.Background(), path)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatalf("expected at least one chunk")
	}
	for _, c := range chunks {
		if c.SourceID != path {
			t.Fatalf("SourceID = %q, want %q", c.SourceID, path)
		}
	}
}

func TestLLMSummarizer_EmptyDescriptions(t *testing.T) {
	provider := &stubProvider{response: "summary"}
	s := NewLLMSummarizer(provider, "")
	got, err := s.Summarize(context.Background(), nil, "prompt")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty summary for no descriptions, got %q", got)
	}
	if provider.calls != 0 {
		t.Fatalf("expected no completion call for empty input")
	}
}
