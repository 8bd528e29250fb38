package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"youtube-learner/entities"
)

var (
	// ErrTranscriptGeneration is returned when the model response cannot be
	// parsed into a non-empty transcript.
	ErrTranscriptGeneration = errors.New("transcript generation failed")
	// ErrInsightGeneration is returned when the cleaned insight list is empty.
	ErrInsightGeneration = errors.New("insight generation failed")
)

// Gateway wraps the two generative calls of the pipeline. Insights are
// derived from the transcript, so GenerateInsights must only be called with a
// fully resolved transcript.
type Gateway interface {
	GenerateTranscript(ctx context.Context, videoURL string) (entities.Transcript, error)
	GenerateInsights(ctx context.Context, transcript entities.Transcript) ([]string, error)
}

// ChatClient is the single model call the gateway needs, split out so tests
// can run without the network.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, prompt string) (string, error)
}

type openAIClient struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewChatClient(apiKey, model string) ChatClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openAIClient{client: &client, model: openai.ChatModel(model)}
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

type gateway struct {
	client ChatClient
}

func NewGateway(client ChatClient) Gateway {
	return &gateway{client: client}
}

func (g *gateway) GenerateTranscript(ctx context.Context, videoURL string) (entities.Transcript, error) {
	prompt := transcriptPrompt(videoURL)
	raw, err := g.client.CreateChatCompletion(ctx, prompt)
	if err != nil {
		return nil, errors.Join(ErrTranscriptGeneration, err)
	}

	transcript, err := ParseTranscript(raw)
	if err != nil {
		return nil, err
	}
	return transcript, nil
}

func (g *gateway) GenerateInsights(ctx context.Context, transcript entities.Transcript) ([]string, error) {
	prompt := insightsPrompt(transcript)
	raw, err := g.client.CreateChatCompletion(ctx, prompt)
	if err != nil {
		return nil, errors.Join(ErrInsightGeneration, err)
	}

	insights := CleanInsights(raw)
	if len(insights) == 0 {
		return nil, fmt.Errorf("%w: response contained no usable lines", ErrInsightGeneration)
	}
	return insights, nil
}

func transcriptPrompt(videoURL string) string {
	return "Create a detailed transcript with timestamps for the YouTube video at this URL: " + videoURL +
		`. Format the entire response as a valid JSON array of objects, where each object has a "timestamp" key (string) and a "text" key (string). ` +
		"Do not include any introductory text, closing text, or markdown formatting like ```json. The response should be only the JSON array."
}

func insightsPrompt(transcript entities.Transcript) string {
	var sb strings.Builder
	for i, item := range transcript {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(item.Timestamp)
		sb.WriteString(" ")
		sb.WriteString(item.Text)
	}
	return "Based on the following video transcript, generate a list of 4-5 key insights. " +
		"Do not include any text at the beginning or end of the response. Output only the insights, each on a new line.\n\nTranscript:\n" + sb.String()
}

// ParseTranscript validates the model response against the expected schema: a
// non-empty JSON array of objects with string "timestamp" and "text" fields.
// Code fences are stripped first since models add them despite instructions.
func ParseTranscript(raw string) (entities.Transcript, error) {
	cleaned := stripCodeFence(raw)

	var transcript entities.Transcript
	if err := json.Unmarshal([]byte(cleaned), &transcript); err != nil {
		return nil, fmt.Errorf("%w: response is not a valid JSON array: %v", ErrTranscriptGeneration, err)
	}
	if len(transcript) == 0 {
		return nil, fmt.Errorf("%w: response parsed to an empty transcript", ErrTranscriptGeneration)
	}
	for i, item := range transcript {
		if item.Timestamp == "" || item.Text == "" {
			return nil, fmt.Errorf("%w: entry %d is missing a required field", ErrTranscriptGeneration, i)
		}
	}
	return transcript, nil
}

// CleanInsights splits a free-text response into insight lines: trimmed,
// leading "- " bullets stripped, blank lines dropped.
func CleanInsights(raw string) []string {
	var insights []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		if line == "" {
			continue
		}
		insights = append(insights, line)
	}
	return insights
}

func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}
