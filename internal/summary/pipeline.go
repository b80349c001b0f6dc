// Package summary wires context composition and generation into the single
// entry point callers use.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pipeline phases.
const (
	PhaseCompose  = "compose"
	PhaseGenerate = "generate"
)

// ErrBlankPatientID rejects empty or whitespace-only identifiers.
var ErrBlankPatientID = errors.New("patient id is blank")

// PhaseError wraps an error with the phase where it occurred.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Composer builds the context text for a patient.
type Composer interface {
	Compose(ctx context.Context, patientID string) (string, error)
}

// Summarizer turns context text into displayable summary text.
type Summarizer interface {
	Summarize(ctx context.Context, contextText string) (string, error)
}

// Result is everything produced for one request.
type Result struct {
	PatientID string
	RequestID string
	Context   string
	Summary   string // empty when generation was not requested

	DurationCompose  time.Duration
	DurationGenerate time.Duration
	DurationTotal    time.Duration
}

// Service runs the compose → generate pipeline. It keeps no state between
// requests.
type Service struct {
	composer   Composer
	summarizer Summarizer
	log        zerolog.Logger
}

// NewService returns a Service. summarizer may be nil when only context
// composition is needed.
func NewService(composer Composer, summarizer Summarizer, log zerolog.Logger) *Service {
	return &Service{composer: composer, summarizer: summarizer, log: log}
}

type requestIDKey struct{}

// WithRequestID attaches a request id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Run composes the patient's context and, when generate is set, summarizes
// it. Dataset setup errors come back wrapped in a *PhaseError and still match
// the records sentinels with errors.Is.
func (s *Service) Run(ctx context.Context, patientID string, generate bool) (*Result, error) {
	totalStart := time.Now()
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrBlankPatientID
	}

	rid := RequestID(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = WithRequestID(ctx, rid)
	}
	log := s.log.With().Str("request_id", rid).Str("patient_id", patientID).Logger()
	res := &Result{PatientID: patientID, RequestID: rid}

	// Phase 1: Compose
	log.Info().Msg("composing context")
	start := time.Now()
	text, err := s.composer.Compose(ctx, patientID)
	if err != nil {
		log.Error().Err(err).Msg("context composition failed")
		return nil, &PhaseError{Phase: PhaseCompose, Err: err}
	}
	res.Context = text
	res.DurationCompose = time.Since(start)

	// Phase 2: Generate
	if generate {
		if s.summarizer == nil {
			return nil, &PhaseError{Phase: PhaseGenerate, Err: errors.New("no summarizer configured")}
		}
		log.Info().Msg("requesting summary")
		start = time.Now()
		summary, err := s.summarizer.Summarize(ctx, text)
		if err != nil {
			return nil, &PhaseError{Phase: PhaseGenerate, Err: err}
		}
		res.Summary = summary
		res.DurationGenerate = time.Since(start)
	}

	res.DurationTotal = time.Since(totalStart)
	log.Info().
		Int("context_chars", len(res.Context)).
		Int("summary_chars", len(res.Summary)).
		Str("total_duration", res.DurationTotal.String()).
		Msg("summary pipeline complete")
	return res, nil
}

// GenerateSummaryForPatient returns displayable summary text for patientID.
// Missing clinical data never fails it; dataset setup errors do.
func (s *Service) GenerateSummaryForPatient(ctx context.Context, patientID string) (string, error) {
	res, err := s.Run(ctx, patientID, true)
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}

// Context returns the composed context without calling the generation
// service.
func (s *Service) Context(ctx context.Context, patientID string) (string, error) {
	res, err := s.Run(ctx, patientID, false)
	if err != nil {
		return "", err
	}
	return res.Context, nil
}
