package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/listingcheck/internal/config"
	"github.com/agenthands/listingcheck/internal/core"
	"github.com/agenthands/listingcheck/internal/core/model"
)

const (
	Name    = "Product Validator API"
	Version = "1.0.0"
)

// Evaluator is the evaluation service the handlers call.
type Evaluator interface {
	Evaluate(ctx context.Context, req core.Request) (model.Decision, error)
	EvaluateLLMOnly(ctx context.Context, req core.Request) (model.Decision, error)
}

type Server struct {
	Service        Evaluator
	APIKey         string
	RequestTimeout time.Duration
	MaxImageBytes  int64
}

func NewServer(svc Evaluator, cfg config.ServerConfig) *Server {
	return &Server{
		Service:        svc,
		APIKey:         cfg.APIKey,
		RequestTimeout: cfg.RequestTimeout(),
		MaxImageBytes:  cfg.MaxImageBytes,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger("/healthz", "/metrics"))

	r.GET("/", s.Info)
	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	evaluate := r.Group("/evaluate", APIKeyAuth(s.APIKey))
	evaluate.POST("", s.Evaluate)
	evaluate.POST("/llm-only", s.EvaluateLLMOnly)

	return r
}
