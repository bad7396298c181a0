// Package insight asks an LLM to restate a project's heuristic scores as
// visitor-targeted prose. Every failure path degrades to deterministic
// static content, so callers always get a usable insight.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/linqiu/gitfolio/pkg/github"
	"github.com/linqiu/gitfolio/pkg/persona"
	"github.com/linqiu/gitfolio/pkg/scoring"
)

const systemPrompt = `You are a portfolio copywriter. Given a GitHub repository's metadata and pre-computed heuristic scores, restate them as prose for a specific audience. Do not invent facts; only rephrase what you are given.

Respond with a JSON object:
{
  "summary": "2-3 sentence project summary in the requested tone",
  "highlights": ["3-5 short bullet highlights"]
}

Return ONLY valid JSON. No markdown, no code fences.`

// Insight is the prose restatement of a score bundle for one visitor type.
type Insight struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

// Generator produces insights via an OpenAI-compatible chat API.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator creates a generator. baseURL may point at any
// OpenAI-compatible endpoint; empty keeps the default.
func NewGenerator(baseURL, apiKey, model string) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate returns the LLM's restatement of the bundle for the given
// profile, or an error. Callers that must not fail should use Fallback.
func (g *Generator) Generate(ctx context.Context, snap github.Snapshot, bundle scoring.Bundle, profile persona.Profile) (*Insight, error) {
	userMsg := buildUserMessage(snap, bundle, profile)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("insight call for %s: %w", snap.FullName, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("insight: no choices returned for %s", snap.FullName)
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)

	var out Insight
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("parse insight for %s: %w", snap.FullName, err)
	}
	if out.Summary == "" {
		return nil, fmt.Errorf("insight: empty summary for %s", snap.FullName)
	}
	return &out, nil
}

func buildUserMessage(snap github.Snapshot, bundle scoring.Bundle, profile persona.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", snap.FullName)
	if snap.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", snap.Description)
	}
	if snap.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", snap.Language)
	}
	fmt.Fprintf(&b, "Stars: %d | Forks: %d | Open issues: %d\n", snap.Stars, snap.Forks, snap.OpenIssues)
	if len(snap.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(snap.Topics, ", "))
	}
	fmt.Fprintf(&b, "Scores (1-10): complexity %d, maintainability %d, scalability %d, innovation %d, priority %d\n",
		bundle.Complexity, bundle.Maintainability, bundle.Scalability, bundle.Innovation, bundle.Priority)
	fmt.Fprintf(&b, "Category: %s | Tier: %s\n", bundle.Category, bundle.Tier)
	fmt.Fprintf(&b, "Audience: %s. Focus on %s. Tone: %s.\n",
		profile.Label, strings.Join(profile.FocusAreas, ", "), profile.Tone)
	return b.String()
}

// Fallback builds deterministic static content from the bundle alone, used
// when no generator is configured or the LLM call fails.
func Fallback(snap github.Snapshot, bundle scoring.Bundle, profile persona.Profile) *Insight {
	summary := snap.Description
	if summary == "" {
		summary = "A professional software project"
	}

	highlights := make([]string, 0, 5)
	if snap.Language != "" {
		highlights = append(highlights, fmt.Sprintf("Built with %s", snap.Language))
	}
	if snap.Stars > 0 {
		highlights = append(highlights, fmt.Sprintf("%d GitHub stars", snap.Stars))
	}
	if snap.Forks > 0 {
		highlights = append(highlights, fmt.Sprintf("%d community forks", snap.Forks))
	}
	if bundle.Complexity >= 7 {
		highlights = append(highlights, "High technical complexity")
	}
	if bundle.Maintainability >= 7 {
		highlights = append(highlights, "Actively maintained")
	}
	if len(highlights) == 0 {
		highlights = append(highlights, "Professional development")
	}

	return &Insight{Summary: summary, Highlights: highlights}
}

// stripCodeFences removes markdown code fences that some models wrap around
// JSON despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
