package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/gin-gonic/gin"

	"github.com/agenthands/listingcheck/internal/core"
	"github.com/agenthands/listingcheck/internal/core/model"
)

// ListingForm is the multipart body of the LLM-only endpoint. Any threshold
// fields sent along are not bound.
type ListingForm struct {
	Image       *multipart.FileHeader `form:"image" binding:"required"`
	Title       string                `form:"title" binding:"required"`
	Description string                `form:"description" binding:"required"`
}

// EvaluateForm is the multipart body of the hybrid endpoint.
type EvaluateForm struct {
	ListingForm
	SimLow       *float64 `form:"sim_low" binding:"omitempty,gte=0,lte=1"`
	SimHigh      *float64 `form:"sim_high" binding:"omitempty,gte=0,lte=1"`
	EmbeddingDim *int     `form:"embedding_dim" binding:"omitempty,oneof=128 256 512 1408"`
}

func (s *Server) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": Name, "version": Version})
}

func (s *Server) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) Evaluate(c *gin.Context) {
	var form EvaluateForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, ok := s.listingRequest(c, form.ListingForm)
	if !ok {
		return
	}
	req.SimLow = form.SimLow
	req.SimHigh = form.SimHigh
	req.EmbeddingDim = form.EmbeddingDim

	ctx, cancel := s.requestContext(c)
	defer cancel()

	d, err := s.Service.Evaluate(ctx, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, d)
}

func (s *Server) EvaluateLLMOnly(c *gin.Context) {
	var form ListingForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, ok := s.listingRequest(c, form)
	if !ok {
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	d, err := s.Service.EvaluateLLMOnly(ctx, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, d)
}

func (s *Server) respond(c *gin.Context, d model.Decision) {
	if c.Request.Context().Err() != nil {
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.RequestTimeout)
}

func (s *Server) listingRequest(c *gin.Context, form ListingForm) (core.Request, bool) {
	image, err := s.readImage(form.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return core.Request{}, false
	}

	return core.Request{
		Image:       image,
		Title:       form.Title,
		Description: form.Description,
	}, true
}

func (s *Server) readImage(fh *multipart.FileHeader) ([]byte, error) {
	if s.MaxImageBytes > 0 && fh.Size > s.MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", s.MaxImageBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	r := io.Reader(f)
	if s.MaxImageBytes > 0 {
		r = io.LimitReader(f, s.MaxImageBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if s.MaxImageBytes > 0 && int64(len(b)) > s.MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", s.MaxImageBytes)
	}
	return b, nil
}

// fail maps an evaluation error to a status code. Nothing is written when the
// client has already disconnected.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	if c.Request.Context().Err() != nil {
		clog.FromContext(c.Request.Context()).Warn("Client disconnected before the decision was ready")
		c.Abort()
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var _ Evaluator = (*core.Service)(nil)
