package similarity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockEmbedder struct {
	mu sync.Mutex

	ImageVec []float32
	TextVecs map[string][]float32
	Err      error
	Dims     []int

	ImageCalls int
	TextCalls  map[string]int
}

func (m *MockEmbedder) EmbedImage(ctx context.Context, image []byte, dim int) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dims = append(m.Dims, dim)
	m.ImageCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ImageVec, nil
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string, dim int) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dims = append(m.Dims, dim)
	if m.TextCalls == nil {
		m.TextCalls = map[string]int{}
	}
	m.TextCalls[text]++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.TextVecs[text], nil
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 1}, []float32{-1, -1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestEmbeddingProvider_Similarity(t *testing.T) {
	emb := &MockEmbedder{
		ImageVec: []float32{1, 0},
		TextVecs: map[string][]float32{
			"screwdriver": {1, 0},
			"tape":        {0, 1},
		},
	}
	p := NewEmbeddingProvider(emb)
	ctx := context.Background()

	sim, err := p.Similarity(ctx, Image([]byte{0xFF, 0xD8}), Text("screwdriver"), 512)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, err = p.Similarity(ctx, Text("screwdriver"), Text("tape"), 128)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)

	assert.Equal(t, []int{512, 512, 128, 128}, emb.Dims)
}

func TestEmbeddingProvider_Errors(t *testing.T) {
	ctx := context.Background()

	p := NewEmbeddingProvider(&MockEmbedder{Err: errors.New("quota exceeded")})
	_, err := p.Similarity(ctx, Image([]byte{1}), Text("x"), 512)
	assert.ErrorContains(t, err, "quota exceeded")

	p = NewEmbeddingProvider(&MockEmbedder{})
	_, err = p.Similarity(ctx, Image([]byte{}), Text("x"), 512)
	assert.ErrorContains(t, err, "empty image")

	p = NewEmbeddingProvider(&MockEmbedder{
		ImageVec: []float32{1, 2, 3},
		TextVecs: map[string][]float32{"x": {1, 2}},
	})
	_, err = p.Similarity(ctx, Image([]byte{1}), Text("x"), 512)
	assert.ErrorContains(t, err, "embedding size mismatch")
}

func TestEmbeddingProvider_ListingSimilarity(t *testing.T) {
	emb := &MockEmbedder{
		ImageVec: []float32{1, 0, 0},
		TextVecs: map[string][]float32{
			"masking tape": {1, 0, 0},
			"paper roll":   {0, 1, 0},
		},
	}
	p := NewEmbeddingProvider(emb)

	l, err := p.ListingSimilarity(context.Background(), []byte{0xFF, 0xD8}, "masking tape", "paper roll", 256)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, l.ImageTitle, 1e-9)
	assert.InDelta(t, 0.0, l.ImageDescription, 1e-9)
	assert.InDelta(t, 0.0, l.TitleDescription, 1e-9)

	// Each input is embedded exactly once.
	assert.Equal(t, 1, emb.ImageCalls)
	assert.Equal(t, map[string]int{"masking tape": 1, "paper roll": 1}, emb.TextCalls)
	assert.Equal(t, []int{256, 256, 256}, emb.Dims)
}

func TestEmbeddingProvider_ListingSimilarity_Errors(t *testing.T) {
	ctx := context.Background()

	p := NewEmbeddingProvider(&MockEmbedder{Err: errors.New("quota exceeded")})
	_, err := p.ListingSimilarity(ctx, []byte{1}, "t", "d", 512)
	assert.ErrorContains(t, err, "quota exceeded")

	emb := &MockEmbedder{}
	_, err = NewEmbeddingProvider(emb).ListingSimilarity(ctx, nil, "t", "d", 512)
	assert.ErrorContains(t, err, "empty image")
	assert.Equal(t, 0, emb.ImageCalls)

	p = NewEmbeddingProvider(&MockEmbedder{
		ImageVec: []float32{1, 2, 3},
		TextVecs: map[string][]float32{"t": {1, 2, 3}, "d": {1, 2}},
	})
	_, err = p.ListingSimilarity(ctx, []byte{1}, "t", "d", 512)
	assert.ErrorContains(t, err, "embedding size mismatch")
}
