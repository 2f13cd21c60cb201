package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/listingcheck/internal/config"
)

// NewComparator builds the vision comparator for the configured provider.
// Gemini without an api key runs on Vertex AI with the Google Cloud project and
// credentials from gcp.
func NewComparator(ctx context.Context, cfg config.LLMConfig, gcp config.EmbeddingConfig) (VisionComparator, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		if cfg.APIKey != "" {
			return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		}
		if gcp.ProjectID == "" {
			return nil, fmt.Errorf("gemini provider requires an api key or a google cloud project")
		}
		return newVertexGemini(ctx, cfg, gcp)

	case "vertex":
		if gcp.ProjectID == "" {
			return nil, fmt.Errorf("vertex provider requires a google cloud project")
		}
		return newVertexGemini(ctx, cfg, gcp)

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		// Ollama serves an OpenAI-compatible API under /v1
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}

		// API key is ignored by Ollama but required by the client
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}

		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

func newVertexGemini(ctx context.Context, cfg config.LLMConfig, gcp config.EmbeddingConfig) (*VertexGeminiClient, error) {
	creds, err := vertexCredentials(gcp)
	if err != nil {
		return nil, err
	}
	return NewVertexGeminiClient(ctx, gcp.ProjectID, gcp.Location, cfg.Model, creds)
}

// NewEmbedder builds the multimodal embedder for the configured provider.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (*VertexEmbedder, error) {
	switch strings.ToLower(cfg.Provider) {
	case "vertex":
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("vertex embedder requires a project id")
		}
		opts, err := credentialOptions(cfg)
		if err != nil {
			return nil, err
		}
		return NewVertexEmbedder(ctx, cfg.ProjectID, cfg.Location, cfg.Model, opts...)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
