package llm

import (
	"context"
)

// VisionComparator asks a vision-capable model whether an image agrees with a
// product title and description. The returned text is untrusted model output.
type VisionComparator interface {
	Compare(ctx context.Context, image []byte, title, description string) (string, error)
}

// Embedder produces multimodal embeddings in a shared image/text space.
type Embedder interface {
	EmbedImage(ctx context.Context, image []byte, dim int) ([]float32, error)
	EmbedText(ctx context.Context, text string, dim int) ([]float32, error)
}
