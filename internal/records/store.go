// Package records loads and validates the clinical record collections and
// exposes per-patient, typed accessors over them.
package records

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/clinsum/internal/model"
	"github.com/gyeh/clinsum/internal/normalize"
	"github.com/gyeh/clinsum/internal/recency"
)

// Store reads record collections from a Source. It holds no data between
// calls: every accessor reloads and revalidates its dataset.
type Store struct {
	src Source
	log zerolog.Logger
}

// NewStore returns a Store over src.
func NewStore(src Source, log zerolog.Logger) *Store {
	return &Store{src: src, log: log}
}

func (s *Store) patientRows(ctx context.Context, rt model.RecordType, patientID string) (*Table, []Row, error) {
	start := time.Now()
	t, err := Load(ctx, s.src, rt)
	if err != nil {
		return nil, nil, err
	}
	rows := ForPatient(t, patientID)
	s.log.Debug().
		Str("dataset", rt.Name).
		Int("rows_total", len(t.Rows)).
		Int("rows_patient", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("dataset loaded")
	return t, rows, nil
}

// Diagnoses returns every diagnosis row for the patient, across episodes.
func (s *Store) Diagnoses(ctx context.Context, patientID string) ([]model.Diagnosis, error) {
	t, rows, err := s.patientRows(ctx, model.Diagnoses, patientID)
	if err != nil {
		return nil, err
	}
	return DecodeDiagnoses(t, rows), nil
}

// Medications returns every medication row for the patient.
func (s *Store) Medications(ctx context.Context, patientID string) ([]model.Medication, error) {
	t, rows, err := s.patientRows(ctx, model.Medications, patientID)
	if err != nil {
		return nil, err
	}
	return DecodeMedications(t, rows), nil
}

// Vitals returns every vital-sign row for the patient, unfiltered by date.
func (s *Store) Vitals(ctx context.Context, patientID string) ([]model.Vital, error) {
	t, rows, err := s.patientRows(ctx, model.Vitals, patientID)
	if err != nil {
		return nil, err
	}
	return DecodeVitals(t, rows), nil
}

// Wounds returns every wound row for the patient, unfiltered by date.
func (s *Store) Wounds(ctx context.Context, patientID string) ([]model.Wound, error) {
	t, rows, err := s.patientRows(ctx, model.Wounds, patientID)
	if err != nil {
		return nil, err
	}
	return DecodeWounds(t, rows), nil
}

// Assessments returns the patient's OASIS rows with exact duplicates removed,
// in source order.
func (s *Store) Assessments(ctx context.Context, patientID string) ([]model.Assessment, error) {
	t, rows, err := s.patientRows(ctx, model.Assessments, patientID)
	if err != nil {
		return nil, err
	}
	return DecodeAssessments(t, Distinct(rows)), nil
}

// Notes returns every clinical note row for the patient, unfiltered by date.
func (s *Store) Notes(ctx context.Context, patientID string) ([]model.Note, error) {
	t, rows, err := s.patientRows(ctx, model.Notes, patientID)
	if err != nil {
		return nil, err
	}
	return DecodeNotes(t, rows), nil
}

// Check loads and validates every dataset, collecting one report per record
// type. It keeps going past failures so all problems surface at once.
func (s *Store) Check(ctx context.Context) []*model.DatasetReport {
	reports := make([]*model.DatasetReport, 0, len(model.AllRecordTypes))
	for _, rt := range model.AllRecordTypes {
		start := time.Now()
		rep := &model.DatasetReport{Dataset: rt.Name, Label: rt.Label}

		if loc, ok := s.src.(Locator); ok {
			if path, err := loc.Locate(rt.Name); err == nil {
				rep.Location = path
				if sha, err := normalize.FileHash(path); err == nil {
					rep.SHA256 = sha
				}
			}
		}

		t, err := Load(ctx, s.src, rt)
		rep.Duration = time.Since(start)
		if err != nil {
			rep.Err = err
			s.log.Warn().Err(err).Str("dataset", rt.Name).Msg("dataset check failed")
		} else {
			rep.Location = t.Location
			rep.Rows = len(t.Rows)
			rep.Columns = t.Columns
			if rt.DateColumn != "" {
				dateCoverage(t, rt.DateColumn, rep)
			}
			s.log.Info().
				Str("dataset", rt.Name).
				Int("rows", rep.Rows).
				Dur("duration", rep.Duration).
				Msg("dataset ok")
		}
		reports = append(reports, rep)
	}
	return reports
}

// dateCoverage fills the per-patient recency figures of rep from dateCol.
func dateCoverage(t *Table, dateCol string, rep *model.DatasetReport) {
	patientOf := func(r Row) string { return t.Value(r, "patient_id") }
	dateOf := func(r Row) string { return t.Value(r, dateCol) }

	groups, patients := recency.GroupBy(t.Rows, patientOf)
	latest := recency.LatestByKey(t.Rows, patientOf, dateOf)
	rep.Patients = len(patients)

	var newest string
	for _, p := range patients {
		sel, ok := latest[p]
		if !ok {
			rep.UndatedRows += len(groups[p])
			continue
		}
		rep.UndatedRows += sel.Skipped
		if d := sel.DateString(); d > newest {
			newest = d
		}
	}
	rep.LatestDay = newest
}
