// Package similarity computes pairwise cosine similarity between images and texts.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Content is one side of a similarity comparison: either an image or a text.
type Content struct {
	Image []byte
	Text  string
}

func Image(b []byte) Content { return Content{Image: b} }

func Text(s string) Content { return Content{Text: s} }

func (c Content) IsImage() bool { return c.Image != nil }

func (c Content) kind() string {
	if c.IsImage() {
		return "image"
	}
	return "text"
}

// Provider returns the cosine similarity of a and b at the given embedding size.
type Provider interface {
	Similarity(ctx context.Context, a, b Content, dim int) (float64, error)
}

// Listing is the three similarities of one listing.
type Listing struct {
	ImageTitle       float64
	ImageDescription float64
	TitleDescription float64
}

// ListingProvider computes all three listing similarities at once, so each
// input is embedded a single time.
type ListingProvider interface {
	ListingSimilarity(ctx context.Context, image []byte, title, description string, dim int) (Listing, error)
}

// Embedder is the black-box embedding service.
type Embedder interface {
	EmbedImage(ctx context.Context, image []byte, dim int) ([]float32, error)
	EmbedText(ctx context.Context, text string, dim int) ([]float32, error)
}

// EmbeddingProvider implements Provider on top of an Embedder.
type EmbeddingProvider struct {
	Embedder Embedder
}

func NewEmbeddingProvider(e Embedder) *EmbeddingProvider {
	return &EmbeddingProvider{Embedder: e}
}

func (p *EmbeddingProvider) Similarity(ctx context.Context, a, b Content, dim int) (float64, error) {
	va, err := p.embed(ctx, a, dim)
	if err != nil {
		return 0, err
	}
	vb, err := p.embed(ctx, b, dim)
	if err != nil {
		return 0, err
	}
	if len(va) != len(vb) {
		return 0, fmt.Errorf("embedding size mismatch: %s=%d %s=%d", a.kind(), len(va), b.kind(), len(vb))
	}
	return Cosine(va, vb), nil
}

// ListingSimilarity embeds the image, title and description concurrently, once
// each, and compares the vectors pairwise. The first failure cancels the rest.
func (p *EmbeddingProvider) ListingSimilarity(ctx context.Context, image []byte, title, description string, dim int) (Listing, error) {
	if len(image) == 0 {
		return Listing{}, errors.New("empty image")
	}

	var vi, vt, vd []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		vi, err = p.embed(gctx, Image(image), dim)
		return err
	})
	g.Go(func() (err error) {
		vt, err = p.embed(gctx, Text(title), dim)
		return err
	})
	g.Go(func() (err error) {
		vd, err = p.embed(gctx, Text(description), dim)
		return err
	})
	if err := g.Wait(); err != nil {
		return Listing{}, err
	}

	if len(vi) != len(vt) || len(vi) != len(vd) {
		return Listing{}, fmt.Errorf("embedding size mismatch: image=%d title=%d description=%d", len(vi), len(vt), len(vd))
	}

	return Listing{
		ImageTitle:       Cosine(vi, vt),
		ImageDescription: Cosine(vi, vd),
		TitleDescription: Cosine(vt, vd),
	}, nil
}

func (p *EmbeddingProvider) embed(ctx context.Context, c Content, dim int) ([]float32, error) {
	if c.IsImage() {
		if len(c.Image) == 0 {
			return nil, errors.New("empty image")
		}
		v, err := p.Embedder.EmbedImage(ctx, c.Image, dim)
		if err != nil {
			return nil, fmt.Errorf("failed to embed image: %w", err)
		}
		return v, nil
	}
	v, err := p.Embedder.EmbedText(ctx, c.Text, dim)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	return v, nil
}

// Cosine returns the cosine similarity of two vectors.
// Mismatched lengths, empty vectors and zero norms yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
