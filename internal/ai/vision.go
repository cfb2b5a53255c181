package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// MaxBatchSize is the maximum number of images a single analysis accepts.
const MaxBatchSize = 10

// VisionService extracts shoe metadata from images using OpenAI vision
type VisionService struct {
	client *openai.Client
}

// NewVisionService creates a new vision service
func NewVisionService(apiKey string) *VisionService {
	return &VisionService{
		client: openai.NewClient(apiKey),
	}
}

const analysisPrompt = `You are an expert at identifying sneakers and shoes from photos.
Analyze each of the provided images and extract the following fields for the shoe shown:

- Name (the full model name, e.g. "Air Jordan 1 Retro High OG")
- Brand
- Silhouette (the model line, e.g. "Air Jordan 1")
- Style ID (the manufacturer style code if legible, e.g. "555088-063")
- Size (if visible on a label)
- Color (the colorway)
- Retail Value (estimated retail price in USD)
- Release Date (YYYY-MM-DD if known)
- Condition (e.g. "New", "Used")
- Notes (anything notable)

Respond ONLY with a JSON array containing exactly one object per image, in
the same order as the images. Omit fields you cannot determine. Do not add
any text before or after the JSON array.`

// AnalyzeImages sends the prompt plus every image URL in one request and
// returns the raw text content of the model response.
func (s *VisionService) AnalyzeImages(ctx context.Context, imageURLs []string) (string, error) {
	if len(imageURLs) == 0 {
		return "", fmt.Errorf("no images to analyze")
	}
	if len(imageURLs) > MaxBatchSize {
		return "", fmt.Errorf("too many images: %d (max %d)", len(imageURLs), MaxBatchSize)
	}

	parts := make([]openai.ChatMessagePart, 0, len(imageURLs)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: analysisPrompt,
	})
	for _, url := range imageURLs {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: url,
			},
		})
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:         openai.ChatMessageRoleUser,
					MultiContent: parts,
				},
			},
			MaxTokens:   4000,
			Temperature: 0.2,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to analyze images with AI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from AI")
	}

	return content, nil
}
