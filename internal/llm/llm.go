// Package llm asks an OpenAI-compatible model for a short remedial hint
// when a learner gets a question wrong and the author wrote no explanation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/miascience/quest/internal/model"
)

// HintResult is the JSON object the model is asked to return.
type HintResult struct {
	Hint string `json:"hint"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
	lang  string
}

// New creates a new LLM client. lang is the language the hint is written in.
func New(baseURL, apiKey, modelName, lang string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
		lang:  lang,
	}
}

// Hint explains, without revealing more than needed, why userAnswer is wrong.
func (c *Client) Hint(ctx context.Context, q model.Question, userAnswer string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildHintSystemPrompt(q, c.lang)},
			{Role: openai.ChatMessageRoleUser, Content: userAnswer},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)
	return parseHint(raw)
}

func parseHint(raw string) (string, error) {
	var result HintResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return "", fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	hint := strings.TrimSpace(result.Hint)
	if hint == "" {
		return "", fmt.Errorf("LLM returned an empty hint")
	}
	return hint, nil
}

func buildHintSystemPrompt(q model.Question, lang string) string {
	var sb strings.Builder
	sb.WriteString("You are a patient middle-school science tutor. A student answered this question wrongly:\n\n")
	sb.WriteString("QUESTION: " + q.Text + "\n\n")
	switch q.Type {
	case model.TypeMultipleChoice:
		sb.WriteString("OPTIONS:\n")
		for i, opt := range q.Options {
			marker := " "
			if i == q.CorrectIndex {
				marker = "*"
			}
			sb.WriteString(fmt.Sprintf("%s %d. %s\n", marker, i+1, opt))
		}
		sb.WriteString("(* marks the correct option, not shown to the student)\n\n")
	default:
		sb.WriteString("EXPECTED ANSWER (not shown to student): " + q.CorrectAnswer + "\n\n")
	}
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("- The user message is the student's answer.\n")
	sb.WriteString("- Explain the underlying concept in at most two short sentences.\n")
	sb.WriteString(fmt.Sprintf("- Write in the language with code %q.\n", lang))
	sb.WriteString("\nRespond ONLY with a JSON object:\n")
	sb.WriteString(`{"hint": "<explanation>"}`)
	sb.WriteString("\n")
	return sb.String()
}
