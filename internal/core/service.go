package core

import (
	"context"
	"strings"

	"github.com/agenthands/listingcheck/internal/core/model"
)

// Evaluator is the pipeline the service delegates to.
type Evaluator interface {
	Evaluate(ctx context.Context, in Input, th model.ThresholdConfig) (model.Decision, error)
	EvaluateLLMOnly(ctx context.Context, in Input) model.Decision
}

// Request is the raw payload of an evaluation call. Nil threshold fields take the
// service defaults.
type Request struct {
	Image        []byte
	Title        string
	Description  string
	SimLow       *float64
	SimHigh      *float64
	EmbeddingDim *int
}

// Service fills request defaults, validates, and picks the entry point.
type Service struct {
	engine   Evaluator
	defaults model.ThresholdConfig
}

func NewService(engine Evaluator, defaults model.ThresholdConfig) *Service {
	return &Service{
		engine:   engine,
		defaults: defaults,
	}
}

// Thresholds resolves the effective thresholds for a request.
func (s *Service) Thresholds(req Request) model.ThresholdConfig {
	th := s.defaults
	if req.SimLow != nil {
		th.SimLow = *req.SimLow
	}
	if req.SimHigh != nil {
		th.SimHigh = *req.SimHigh
	}
	if req.EmbeddingDim != nil {
		th.EmbeddingDim = *req.EmbeddingDim
	}
	return th
}

func (s *Service) Evaluate(ctx context.Context, req Request) (model.Decision, error) {
	if err := validateListing(req); err != nil {
		return model.Decision{}, err
	}
	th := s.Thresholds(req)
	if err := th.Validate(); err != nil {
		return model.Decision{}, validationErrorf("%s", err.Error())
	}
	return s.engine.Evaluate(ctx, toInput(req), th)
}

func (s *Service) EvaluateLLMOnly(ctx context.Context, req Request) (model.Decision, error) {
	if err := validateListing(req); err != nil {
		return model.Decision{}, err
	}
	return s.engine.EvaluateLLMOnly(ctx, toInput(req)), nil
}

func validateListing(req Request) error {
	if len(req.Image) == 0 {
		return validationErrorf("image is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return validationErrorf("title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return validationErrorf("description is required")
	}
	return nil
}

func toInput(req Request) Input {
	return Input{
		Image:       req.Image,
		Title:       req.Title,
		Description: req.Description,
	}
}
