package llm

import (
	"context"
	"fmt"

	"cloud.google.com/go/auth"
	"google.golang.org/genai"
)

// VertexGeminiClient runs Gemini on Vertex AI with the project credentials
// the embedder uses, so no AI Studio key is needed.
type VertexGeminiClient struct {
	client *genai.Client
	model  string
}

func NewVertexGeminiClient(ctx context.Context, projectID, location, model string, creds *auth.Credentials) (*VertexGeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:     projectID,
		Location:    location,
		Backend:     genai.BackendVertexAI,
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex gemini client: %w", err)
	}

	return &VertexGeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *VertexGeminiClient) Compare(ctx context.Context, image []byte, title, description string) (string, error) {
	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: ComparatorInstructions}},
		},
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: SniffImageMIME(image), Data: image}},
			{Text: UserPrompt(title, description)},
		},
	}}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no response content")
	}
	return text, nil
}
