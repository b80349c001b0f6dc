// Package compose assembles the per-patient clinical context: six sections
// in a fixed order, each falling back to fixed text when its data is absent.
package compose

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/clinsum/internal/model"
)

// Retriever supplies per-patient records. records.Store implements it.
type Retriever interface {
	Diagnoses(ctx context.Context, patientID string) ([]model.Diagnosis, error)
	Vitals(ctx context.Context, patientID string) ([]model.Vital, error)
	Wounds(ctx context.Context, patientID string) ([]model.Wound, error)
	Medications(ctx context.Context, patientID string) ([]model.Medication, error)
	Notes(ctx context.Context, patientID string) ([]model.Note, error)
	Assessments(ctx context.Context, patientID string) ([]model.Assessment, error)
}

// SectionSeparator joins rendered sections.
const SectionSeparator = "\n\n"

// Options tunes composition.
type Options struct {
	AssessmentOrder string // OrderLatest (default) or OrderFile
}

// Compositor builds the context text for one patient.
type Compositor struct {
	store Retriever
	log   zerolog.Logger
	opts  Options
}

// New returns a Compositor reading from store.
func New(store Retriever, log zerolog.Logger, opts Options) *Compositor {
	if opts.AssessmentOrder == "" {
		opts.AssessmentOrder = OrderLatest
	}
	return &Compositor{store: store, log: log, opts: opts}
}

// Diagnoses looks up the patient's diagnoses. Any failure, including a
// dataset setup error, is reported as NotDocumented rather than returned.
func (c *Compositor) Diagnoses(ctx context.Context, patientID string) DiagnosisResult {
	rows, err := c.store.Diagnoses(ctx, patientID)
	if err != nil {
		c.log.Warn().Err(err).Str("patient_id", patientID).Msg("diagnosis lookup failed, marking not documented")
		return DiagnosisResult{NotDocumented: true, Reason: err}
	}
	if len(rows) == 0 {
		return DiagnosisResult{NotDocumented: true}
	}
	descs := make([]string, len(rows))
	for i, d := range rows {
		descs[i] = d.Description
	}
	return DiagnosisResult{Descriptions: descs}
}

// Compose retrieves all six sections concurrently and joins them in the fixed
// order. Dataset errors other than for diagnoses are returned unchanged.
func (c *Compositor) Compose(ctx context.Context, patientID string) (string, error) {
	start := time.Now()
	blocks := make([]string, len(SectionOrder))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		blocks[0] = renderDiagnoses(c.Diagnoses(gctx, patientID))
		return nil
	})
	g.Go(func() error {
		vitals, err := c.store.Vitals(gctx, patientID)
		if err != nil {
			return err
		}
		var skipped int
		blocks[1], skipped = renderVitals(vitals)
		c.warnSkipped(patientID, model.Vitals.Name, skipped)
		return nil
	})
	g.Go(func() error {
		wounds, err := c.store.Wounds(gctx, patientID)
		if err != nil {
			return err
		}
		var skipped int
		blocks[2], skipped = renderWounds(wounds)
		c.warnSkipped(patientID, model.Wounds.Name, skipped)
		return nil
	})
	g.Go(func() error {
		meds, err := c.store.Medications(gctx, patientID)
		if err != nil {
			return err
		}
		blocks[3] = renderMedications(meds)
		return nil
	})
	g.Go(func() error {
		notes, err := c.store.Notes(gctx, patientID)
		if err != nil {
			return err
		}
		var skipped int
		blocks[4], skipped = renderNotes(notes)
		c.warnSkipped(patientID, model.Notes.Name, skipped)
		return nil
	})
	g.Go(func() error {
		rows, err := c.store.Assessments(gctx, patientID)
		if err != nil {
			return err
		}
		blocks[5] = renderFunctional(rows, c.opts.AssessmentOrder)
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", err
	}

	text := strings.Join(blocks, SectionSeparator)
	c.log.Info().
		Str("patient_id", patientID).
		Int("context_chars", len(text)).
		Dur("duration", time.Since(start)).
		Msg("context composed")
	return text, nil
}

func (c *Compositor) warnSkipped(patientID, dataset string, skipped int) {
	if skipped == 0 {
		return
	}
	c.log.Warn().
		Str("patient_id", patientID).
		Str("dataset", dataset).
		Int("rows_skipped", skipped).
		Msg("rows with unparseable dates ignored")
}
