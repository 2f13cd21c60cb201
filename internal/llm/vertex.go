package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/agenthands/listingcheck/internal/config"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// VertexEmbedder calls a Vertex AI multimodal embedding model
// (multimodalembedding@001) through the prediction service.
type VertexEmbedder struct {
	client   *aiplatform.PredictionClient
	endpoint string
}

func NewVertexEmbedder(ctx context.Context, projectID, location, model string, opts ...option.ClientOption) (*VertexEmbedder, error) {
	apiEndpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)
	opts = append([]option.ClientOption{option.WithEndpoint(apiEndpoint)}, opts...)

	client, err := aiplatform.NewPredictionClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction client: %w", err)
	}

	return &VertexEmbedder{
		client:   client,
		endpoint: ModelEndpoint(projectID, location, model),
	}, nil
}

// ModelEndpoint is the resource name of a Google-published model.
func ModelEndpoint(projectID, location, model string) string {
	return fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", projectID, location, model)
}

func (e *VertexEmbedder) EmbedImage(ctx context.Context, image []byte, dim int) ([]float32, error) {
	instance := map[string]any{
		"image": map[string]any{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(image),
		},
	}
	return e.predict(ctx, instance, dim, "imageEmbedding")
}

func (e *VertexEmbedder) EmbedText(ctx context.Context, text string, dim int) ([]float32, error) {
	return e.predict(ctx, map[string]any{"text": text}, dim, "textEmbedding")
}

func (e *VertexEmbedder) predict(ctx context.Context, instance map[string]any, dim int, field string) ([]float32, error) {
	inst, err := structpb.NewValue(instance)
	if err != nil {
		return nil, fmt.Errorf("failed to encode instance: %w", err)
	}
	params, err := structpb.NewValue(map[string]any{"dimension": dim})
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameters: %w", err)
	}

	resp, err := e.client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   e.endpoint,
		Instances:  []*structpb.Value{inst},
		Parameters: params,
	})
	if err != nil {
		return nil, err
	}

	return embeddingFromPredictions(resp.GetPredictions(), field)
}

func embeddingFromPredictions(predictions []*structpb.Value, field string) ([]float32, error) {
	if len(predictions) == 0 {
		return nil, fmt.Errorf("no predictions returned")
	}
	values := predictions[0].GetStructValue().GetFields()[field].GetListValue().GetValues()
	if len(values) == 0 {
		return nil, fmt.Errorf("prediction has no %s", field)
	}
	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v.GetNumberValue())
	}
	return vec, nil
}

func (e *VertexEmbedder) Close() error {
	return e.client.Close()
}

// credentialOptions resolves credentials in order: inline service account,
// credentials file, then application default credentials (no option).
func credentialOptions(cfg config.EmbeddingConfig) ([]option.ClientOption, error) {
	data, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, err
	}
	if data != nil {
		return []option.ClientOption{
			option.WithCredentialsJSON(data),
			option.WithScopes(cloudPlatformScope),
		}, nil
	}

	if file := credentialsFile(cfg); file != "" {
		return []option.ClientOption{
			option.WithCredentialsFile(file),
			option.WithScopes(cloudPlatformScope),
		}, nil
	}

	return nil, nil
}

// vertexCredentials resolves the same sources as credentialOptions for clients
// that take *auth.Credentials. Nil means application default credentials.
func vertexCredentials(cfg config.EmbeddingConfig) (*auth.Credentials, error) {
	data, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, err
	}
	file := credentialsFile(cfg)
	if data == nil && file == "" {
		return nil, nil
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes:          []string{cloudPlatformScope},
		CredentialsJSON: data,
		CredentialsFile: file,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load google credentials: %w", err)
	}
	return creds, nil
}

// serviceAccountJSON builds a service account key from the inline fields, or
// returns nil when they are not both set.
func serviceAccountJSON(cfg config.EmbeddingConfig) ([]byte, error) {
	if cfg.PrivateKey == "" || cfg.ClientEmail == "" {
		return nil, nil
	}
	info := map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"private_key":  strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n"),
		"client_email": cfg.ClientEmail,
		"token_uri":    "https://oauth2.googleapis.com/token",
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode service account: %w", err)
	}
	return data, nil
}

func credentialsFile(cfg config.EmbeddingConfig) string {
	if cfg.CredentialsFile == "" {
		return ""
	}
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		return ""
	}
	return cfg.CredentialsFile
}
