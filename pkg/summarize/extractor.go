// Package summarize sends a transcript plus an instruction prompt to a remote
// language model and normalizes the JSON result into a Summary.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"podcast-archive/pkg/domain"
	"podcast-archive/pkg/openai"
	"podcast-archive/pkg/retry"
)

// ErrNoJSON means the model call succeeded but no JSON object could be
// recovered from its response. Fatal for the episode, not retried.
var ErrNoJSON = errors.New("model did not return recoverable JSON")

const systemPrompt = "You are a careful, faithful extractor. Answer ONLY in JSON."

// ChatClient performs one remote chat completion call.
type ChatClient interface {
	ChatCompletion(ctx context.Context, model string, messages []openai.ChatMessage, temperature float64, jsonMode bool) (string, error)
}

// Extractor turns transcripts into structured summaries.
type Extractor struct {
	client      ChatClient
	policy      retry.Policy
	model       string
	temperature float64
	prompt      string
}

// New creates an extractor using the given instruction prompt.
func New(client ChatClient, policy retry.Policy, model string, temperature float64, prompt string) *Extractor {
	return &Extractor{
		client:      client,
		policy:      policy,
		model:       model,
		temperature: temperature,
		prompt:      prompt,
	}
}

// Extract sends the transcript to the model and returns the normalized
// summary. The remote call is retried with backoff; it first requests strict
// JSON mode and falls back to an unstructured request when the backend rejects
// that mode. JSON recovery failure after a successful call is ErrNoJSON.
func (e *Extractor) Extract(ctx context.Context, transcript string) (domain.Summary, error) {
	messages := []openai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: e.prompt},
		{Role: "user", Content: "Transcript:\n\n" + transcript},
	}

	var content string
	err := e.policy.Do(ctx, func() error {
		var callErr error
		content, callErr = e.client.ChatCompletion(ctx, e.model, messages, e.temperature, true)
		if callErr == nil {
			return nil
		}
		// Some backends reject the strict-JSON request mode; retry the same
		// attempt without it before counting this as a failure.
		content, callErr = e.client.ChatCompletion(ctx, e.model, messages, e.temperature, false)
		return callErr
	})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("extraction call: %w", err)
	}

	data, ok := decodeJSONObject(content)
	if !ok {
		return domain.Summary{}, ErrNoJSON
	}

	summary := Normalize(data)
	log.Printf("summarize: extracted %d quotes, %d passages, %d questions, %d further passages",
		len(summary.Quotes), len(summary.BiblePassages), len(summary.FollowOnQuestions), len(summary.FurtherBiblePassages))
	return summary, nil
}

// decodeJSONObject parses content as JSON, falling back to the first balanced
// {...} span when the response wraps the object in prose or fencing.
func decodeJSONObject(content string) (map[string]any, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err == nil {
		return data, true
	}

	span, ok := firstJSONObject(content)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, false
	}
	return data, true
}

// firstJSONObject scans for the first balanced top-level {...} span, ignoring
// braces inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// Normalize guarantees the summary shape: the theme and all four list fields
// are always present, and a list field that came back as a scalar is coerced
// into a one-element list of its string form.
func Normalize(data map[string]any) domain.Summary {
	return domain.Summary{
		OverallTheme:         asString(data["overall_theme"]),
		Quotes:               asStringList(data["quotes"]),
		BiblePassages:        asStringList(data["bible_passages"]),
		FollowOnQuestions:    asStringList(data["follow_on_questions"]),
		FurtherBiblePassages: asStringList(data["further_bible_passages"]),
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func asStringList(v any) []string {
	switch list := v.(type) {
	case nil:
		return []string{}
	case []any:
		result := make([]string, 0, len(list))
		for _, item := range list {
			result = append(result, asString(item))
		}
		return result
	default:
		return []string{asString(v)}
	}
}
