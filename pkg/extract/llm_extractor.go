package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kgtour/pkg/graphmodel"
)

// rawTriplet is the wire shape an LLMProvider is asked to emit.
type rawTriplet struct {
	SubjectName string  `json:"subjectName"`
	SubjectType string  `json:"subjectType"`
	ObjectName  string  `json:"objectName"`
	ObjectType  string  `json:"objectType"`
	Relation    string  `json:"relation"`
	Strength    float64 `json:"strength"`
}

func (r rawTriplet) toTriplet() graphmodel.Triplet {
	return graphmodel.Triplet{
		Subject: graphmodel.Entity{Name: r.SubjectName, Type: r.SubjectType},
		Object:  graphmodel.Entity{Name: r.ObjectName, Type: r.ObjectType},
		Relationship: graphmodel.Relationship{
			Description: r.Relation,
			Strength:    int(r.Strength),
		},
	}
}

func parseRawTriplets(response string) ([]graphmodel.Triplet, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var raw []rawTriplet
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, fmt.Errorf("extract: invalid triplet JSON: %w", err)
	}
	triplets := make([]graphmodel.Triplet, 0, len(raw))
	for _, r := range raw {
		triplets = append(triplets, r.toTriplet())
	}
	return triplets, nil
}

// CombinedExtractor asks the LLM for entities and relationships in a single
// completion call.
type CombinedExtractor struct {
	provider LLMProvider
	model    string
}

// NewCombinedExtractor builds a CombinedExtractor over provider.
func NewCombinedExtractor(provider LLMProvider, model string) *CombinedExtractor {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &CombinedExtractor{provider: provider, model: model}
}

func (e *CombinedExtractor) Extract(ctx context.Context, texts [][]string, entityTypes []string) ([]graphmodel.Triplet, error) {
	var all []graphmodel.Triplet
	for _, group := range texts {
		prompt := buildCombinedPrompt(group, entityTypes)
		completion, err := e.provider.Complete(ctx, prompt, CompletionOptions{
			Model:        e.model,
			MaxTokens:    2048,
			Temperature:  0.1,
			SystemPrompt: combinedSystemPrompt,
		})
		if err != nil {
			return nil, fmt.Errorf("extract: combined completion: %w", err)
		}
		triplets, err := parseRawTriplets(completion)
		if err != nil {
			return nil, err
		}
		all = append(all, triplets...)
	}
	return all, nil
}

func buildCombinedPrompt(texts []string, entityTypes []string) string {
	var sb strings.Builder
	sb.WriteString("Extract subject-relationship-object triplets from the following text.\n\n")
	if len(entityTypes) > 0 {
		sb.WriteString("Focus on these entity types: ")
		sb.WriteString(strings.Join(entityTypes, ", "))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Text:\n```\n")
	sb.WriteString(strings.Join(texts, "\n"))
	sb.WriteString("\n```\n\n")
	sb.WriteString("Respond with a JSON array of triplets, each with subjectName, subjectType, objectName, objectType, relation, strength (integer 1-10).")
	return sb.String()
}

const combinedSystemPrompt = `You are a knowledge-graph extraction system. Given a passage, identify the entities
it mentions and the relationships between them, and emit them together as subject-relation-object triplets.`

// SeparateExtractor issues one completion for entities and a second for the
// relationships between them, composing the two into triplets.
type SeparateExtractor struct {
	provider LLMProvider
	model    string
}

// NewSeparateExtractor builds a SeparateExtractor over provider.
func NewSeparateExtractor(provider LLMProvider, model string) *SeparateExtractor {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &SeparateExtractor{provider: provider, model: model}
}

func (e *SeparateExtractor) Extract(ctx context.Context, texts [][]string, entityTypes []string) ([]graphmodel.Triplet, error) {
	var all []graphmodel.Triplet
	for _, group := range texts {
		joined := strings.Join(group, "\n")

		entityPrompt := fmt.Sprintf("List the entities in this text as a JSON array of {\"name\":..., \"type\":...}:\n```\n%s\n```", joined)
		entityResp, err := e.provider.Complete(ctx, entityPrompt, CompletionOptions{Model: e.model, MaxTokens: 1024, Temperature: 0.1})
		if err != nil {
			return nil, fmt.Errorf("extract: entity completion: %w", err)
		}

		relationPrompt := fmt.Sprintf("Given these entities:\n%s\nand this text:\n```\n%s\n```\nemit a JSON array of triplets (subjectName, subjectType, objectName, objectType, relation, strength).", entityResp, joined)
		relationResp, err := e.provider.Complete(ctx, relationPrompt, CompletionOptions{Model: e.model, MaxTokens: 2048, Temperature: 0.1, SystemPrompt: combinedSystemPrompt})
		if err != nil {
			return nil, fmt.Errorf("extract: relation completion: %w", err)
		}

		triplets, err := parseRawTriplets(relationResp)
		if err != nil {
			return nil, err
		}
		all = append(all, triplets...)
	}
	return all, nil
}

// StaticExtractor is a deterministic test double: it holds no LLMProvider
// and returns a fixed triplet set, for tests that exercise the
// TripletExtractor seam without a model.
type StaticExtractor struct {
	Triplets []graphmodel.Triplet
}

func (e *StaticExtractor) Extract(ctx context.Context, texts [][]string, entityTypes []string) ([]graphmodel.Triplet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Triplets, nil
}
