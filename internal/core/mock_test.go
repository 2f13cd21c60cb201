package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agenthands/listingcheck/internal/core/model"
	"github.com/agenthands/listingcheck/internal/core/similarity"
)

const (
	testTitle       = "Masking tape 48mm"
	testDescription = "Beige paper masking tape, 48mm x 50m roll."
)

var testImage = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func testInput() Input {
	return Input{Image: testImage, Title: testTitle, Description: testDescription}
}

func testRequest() Request {
	return Request{Image: testImage, Title: testTitle, Description: testDescription}
}

// MockSimilarity answers by pair, keyed on the text side(s) of the call.
type MockSimilarity struct {
	mu sync.Mutex

	ImageTitle       float64
	ImageDescription float64
	TitleDescription float64
	Errs             map[model.SourcePair]error

	Calls int
	Dims  []int
}

func newMockSimilarity(it, id, td float64) *MockSimilarity {
	return &MockSimilarity{ImageTitle: it, ImageDescription: id, TitleDescription: td}
}

func (m *MockSimilarity) Similarity(ctx context.Context, a, b similarity.Content, dim int) (float64, error) {
	m.mu.Lock()
	m.Calls++
	m.Dims = append(m.Dims, dim)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pair := model.PairTitleDescription
	if a.IsImage() {
		pair = model.PairImageTitle
		if b.Text == testDescription {
			pair = model.PairImageDescription
		}
	}
	if err := m.Errs[pair]; err != nil {
		return 0, err
	}

	switch pair {
	case model.PairImageTitle:
		return m.ImageTitle, nil
	case model.PairImageDescription:
		return m.ImageDescription, nil
	default:
		return m.TitleDescription, nil
	}
}

func (m *MockSimilarity) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

type MockComparator struct {
	Response string
	Err      error

	Calls     int
	LastImage []byte
	LastTitle string
}

func (m *MockComparator) Compare(ctx context.Context, image []byte, title, description string) (string, error) {
	m.Calls++
	m.LastImage = image
	m.LastTitle = title
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type MockRecorder struct {
	mu sync.Mutex

	Decisions      map[string]int
	Gates          map[string]int
	Fallbacks      int
	ProviderErrors int
	Latencies      map[string]int
}

func newMockRecorder() *MockRecorder {
	return &MockRecorder{
		Decisions: map[string]int{},
		Gates:     map[string]int{},
		Latencies: map[string]int{},
	}
}

func (m *MockRecorder) ObserveDecision(mode string, outcome model.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Decisions[mode+"/"+string(outcome)]++
}

func (m *MockRecorder) ObserveGate(gate string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gates[gate]++
}

func (m *MockRecorder) ObserveLLMFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fallbacks++
}

func (m *MockRecorder) ObserveProviderError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProviderErrors++
}

func (m *MockRecorder) ObserveLatency(mode string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Latencies[mode]++
}

const (
	failVerdictJSON = `{"verdict":"fail","conflicts":[{"attribute":"product_type","source_pair":"image_title",` +
		`"title_value":"masking tape","image_value":"screwdriver","severity":"major","comment":"image shows a screwdriver"}],` +
		`"pair_disagreements":["image_title","image_description"],"support":{},"notes":"different products"}`
	passVerdictJSON      = `{"verdict":"pass","conflicts":[],"pair_disagreements":[],"support":{},"notes":""}`
	uncertainVerdictJSON = `{"verdict":"uncertain","conflicts":[],"pair_disagreements":[],"support":{},"notes":"blurry"}`
)

// countingEmbedder returns fixed vectors and counts calls per input.
type countingEmbedder struct {
	mu sync.Mutex

	Vecs  map[string][]float32
	Calls map[string]int
}

func (m *countingEmbedder) EmbedImage(ctx context.Context, image []byte, dim int) ([]float32, error) {
	return m.embed("image"), nil
}

func (m *countingEmbedder) EmbedText(ctx context.Context, text string, dim int) ([]float32, error) {
	return m.embed(text), nil
}

func (m *countingEmbedder) embed(key string) []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[key]++
	return m.Vecs[key]
}

// blockingSimilarity fails image-description only after the other two calls
// are in flight; those block until their context is cancelled.
type blockingSimilarity struct {
	started   chan struct{}
	cancelled atomic.Int32
}

func newBlockingSimilarity() *blockingSimilarity {
	return &blockingSimilarity{started: make(chan struct{}, 2)}
}

func (m *blockingSimilarity) Similarity(ctx context.Context, a, b similarity.Content, dim int) (float64, error) {
	if a.IsImage() && b.Text == testDescription {
		for i := 0; i < 2; i++ {
			select {
			case <-m.started:
			case <-time.After(5 * time.Second):
				return 0, errors.New("sibling calls never started")
			}
		}
		return 0, errors.New("quota exceeded")
	}

	m.started <- struct{}{}
	select {
	case <-ctx.Done():
		m.cancelled.Add(1)
		return 0, ctx.Err()
	case <-time.After(5 * time.Second):
		return 0.5, nil
	}
}
