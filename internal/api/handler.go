// Package api exposes the summary pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinsum/internal/llm"
	"github.com/gyeh/clinsum/internal/records"
	"github.com/gyeh/clinsum/internal/summary"
)

// Pipeline is the part of summary.Service the handlers use.
type Pipeline interface {
	Run(ctx context.Context, patientID string, generate bool) (*summary.Result, error)
}

// Handler serves patient summaries and contexts.
type Handler struct {
	pipeline Pipeline
}

func NewHandler(p Pipeline) *Handler {
	return &Handler{pipeline: p}
}

// RegisterRoutes registers the patient endpoints.
//
//	GET /patients/:id/summary  - generated summary
//	GET /patients/:id/context  - composed context only
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/patients/:id/summary", h.Summary)
	e.GET("/patients/:id/context", h.Context)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type summaryResponse struct {
	PatientID string `json:"patient_id"`
	RequestID string `json:"request_id"`
	Summary   string `json:"summary"`
}

type contextResponse struct {
	PatientID string `json:"patient_id"`
	RequestID string `json:"request_id"`
	Context   string `json:"context"`
}

// Summary handles GET /patients/:id/summary. Generation failures are
// already rendered as text by the client, so they come back as 200.
func (h *Handler) Summary(c echo.Context) error {
	res, err := h.run(c, true)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, summaryResponse{
		PatientID: res.PatientID,
		RequestID: res.RequestID,
		Summary:   res.Summary,
	})
}

// Context handles GET /patients/:id/context.
func (h *Handler) Context(c echo.Context) error {
	res, err := h.run(c, false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, contextResponse{
		PatientID: res.PatientID,
		RequestID: res.RequestID,
		Context:   res.Context,
	})
}

func (h *Handler) run(c echo.Context, generate bool) (*summary.Result, error) {
	ctx := c.Request().Context()
	if rid, ok := c.Get("request_id").(string); ok && rid != "" {
		ctx = summary.WithRequestID(ctx, rid)
	}
	return h.pipeline.Run(ctx, c.Param("id"), generate)
}

func writeError(c echo.Context, err error) error {
	if errors.Is(err, summary.ErrBlankPatientID) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "patient ID is required",
		})
	}
	var dsErr *records.DatasetError
	if errors.As(err, &dsErr) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": dsErr.Error(),
			"kind":  dsErr.KindName(),
		})
	}
	if llm.IsCanceled(err) {
		return c.JSON(http.StatusGatewayTimeout, map[string]string{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": err.Error(),
	})
}

// NewServer builds the echo instance with middleware and routes installed.
func NewServer(p Pipeline, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery(logger))
	e.Use(RequestID())
	e.Use(Logger(logger))

	NewHandler(p).RegisterRoutes(e)
	return e
}
