package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/listingcheck/internal/core/model"
	"github.com/agenthands/listingcheck/internal/core/normalize"
	"github.com/agenthands/listingcheck/internal/core/similarity"
	"github.com/agenthands/listingcheck/internal/llm"
)

const (
	ModeHybrid  = "hybrid"
	ModeLLMOnly = "llm_only"
)

// Gate is the outcome of the threshold gates on a similarity triple.
type Gate string

const (
	GateAutoPass Gate = "auto_pass"
	GateAutoFail Gate = "auto_fail"
	GateGrayZone Gate = "gray_zone"
)

// Input is one listing to evaluate.
type Input struct {
	Image       []byte
	Title       string
	Description string
}

// Recorder receives pipeline observations. All methods must be safe for concurrent use.
type Recorder interface {
	ObserveDecision(mode string, outcome model.Outcome)
	ObserveGate(gate string)
	ObserveLLMFallback()
	ObserveProviderError()
	ObserveLatency(mode string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDecision(string, model.Outcome) {}
func (nopRecorder) ObserveGate(string)                    {}
func (nopRecorder) ObserveLLMFallback()                   {}
func (nopRecorder) ObserveProviderError()                 {}
func (nopRecorder) ObserveLatency(string, time.Duration)  {}

// Engine runs the decision pipeline. It holds no per-request state.
type Engine struct {
	Similarity similarity.Provider
	Comparator llm.VisionComparator
	Recorder   Recorder
}

func NewEngine(sim similarity.Provider, comparator llm.VisionComparator) *Engine {
	return &Engine{
		Similarity: sim,
		Comparator: comparator,
		Recorder:   nopRecorder{},
	}
}

// Classify applies the gates in order: auto-pass, auto-fail, gray zone.
// Both boundaries are inclusive.
func Classify(it, id, td float64, th model.ThresholdConfig) Gate {
	if it >= th.SimHigh && id >= th.SimHigh && td >= th.SimHigh {
		return GateAutoPass
	}
	if it <= th.SimLow && id <= th.SimLow {
		return GateAutoFail
	}
	return GateGrayZone
}

// Evaluate runs the hybrid pipeline. A similarity failure aborts with ErrProvider;
// comparator failures degrade into an uncertain verdict instead.
func (e *Engine) Evaluate(ctx context.Context, in Input, th model.ThresholdConfig) (model.Decision, error) {
	start := time.Now()
	defer func() { e.Recorder.ObserveLatency(ModeHybrid, time.Since(start)) }()

	log := clog.FromContext(ctx)

	it, id, td, err := e.similarities(ctx, in, th.EmbeddingDim)
	if err != nil {
		e.Recorder.ObserveProviderError()
		return model.Decision{}, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	d := model.NewDecision()
	d.ImageTitle = &it
	d.ImageDescription = &id
	d.TitleDescription = &td

	gate := Classify(it, id, td, th)
	e.Recorder.ObserveGate(string(gate))
	log.With("gate", gate).
		With("image_title", it).
		With("image_description", id).
		With("title_description", td).
		Debug("Similarities computed")

	switch gate {
	case GateAutoPass:
		d.Decision = model.OutcomePass
		d.Reasons = append(d.Reasons, "all sims ≥ "+formatThreshold(th.SimHigh))

	case GateAutoFail:
		d.Decision = model.OutcomeFail
		d.Reasons = append(d.Reasons, "both image sims ≤ "+formatThreshold(th.SimLow))

	default:
		d.Flags = append(d.Flags, model.FlagGrayZoneLLM)
		d.Reasons = append(d.Reasons, fmt.Sprintf("gray zone: sims it=%.3f id=%.3f td=%.3f", it, id, td))
		e.adjudicate(ctx, in, &d)
	}

	e.Recorder.ObserveDecision(ModeHybrid, d.Decision)
	return d, nil
}

// EvaluateLLMOnly skips similarities and asks the comparator directly.
func (e *Engine) EvaluateLLMOnly(ctx context.Context, in Input) model.Decision {
	start := time.Now()
	defer func() { e.Recorder.ObserveLatency(ModeLLMOnly, time.Since(start)) }()

	d := model.NewDecision()
	d.Flags = append(d.Flags, model.FlagLLMOnly)
	e.adjudicate(ctx, in, &d)

	e.Recorder.ObserveDecision(ModeLLMOnly, d.Decision)
	return d
}

func (e *Engine) adjudicate(ctx context.Context, in Input, d *model.Decision) {
	log := clog.FromContext(ctx)

	raw, callErr := e.Comparator.Compare(ctx, in.Image, in.Title, in.Description)
	verdict, fallback := normalize.Normalize(raw, callErr)
	if fallback {
		e.Recorder.ObserveLLMFallback()
		d.Flags = append(d.Flags, model.FlagLLMFallbackError)
		log.With("notes", verdict.Notes).Warn("Comparator result degraded to uncertain")
	}

	log.With("verdict", verdict.Verdict).
		With("conflicts", len(verdict.Conflicts)).
		Debug("Comparator verdict")

	d.LLMVerdict = &verdict
	d.Decision = model.OutcomeFor(verdict.Verdict)
	d.Reasons = append(d.Reasons, "llm verdict "+string(verdict.Verdict))
}

// similarities prefers a single-pass ListingProvider. Otherwise it issues the
// three pairwise calls concurrently; the first failure cancels the others.
func (e *Engine) similarities(ctx context.Context, in Input, dim int) (it, id, td float64, err error) {
	if lp, ok := e.Similarity.(similarity.ListingProvider); ok {
		l, err := lp.ListingSimilarity(ctx, in.Image, in.Title, in.Description, dim)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("listing similarity: %w", err)
		}
		return l.ImageTitle, l.ImageDescription, l.TitleDescription, nil
	}

	g, gctx := errgroup.WithContext(ctx)

	image := similarity.Image(in.Image)
	title := similarity.Text(in.Title)
	description := similarity.Text(in.Description)

	g.Go(func() error {
		v, err := e.Similarity.Similarity(gctx, image, title, dim)
		if err != nil {
			return fmt.Errorf("image-title similarity: %w", err)
		}
		it = v
		return nil
	})
	g.Go(func() error {
		v, err := e.Similarity.Similarity(gctx, image, description, dim)
		if err != nil {
			return fmt.Errorf("image-description similarity: %w", err)
		}
		id = v
		return nil
	})
	g.Go(func() error {
		v, err := e.Similarity.Similarity(gctx, title, description, dim)
		if err != nil {
			return fmt.Errorf("title-description similarity: %w", err)
		}
		td = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return 0, 0, 0, err
	}
	return it, id, td, nil
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
