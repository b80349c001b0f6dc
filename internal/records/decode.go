package records

import "github.com/gyeh/clinsum/internal/model"

// The decoders map validated rows onto record structs. They assume Load has
// already confirmed the required columns exist.

func DecodeDiagnoses(t *Table, rows []Row) []model.Diagnosis {
	out := make([]model.Diagnosis, len(rows))
	for i, r := range rows {
		out[i] = model.Diagnosis{
			PatientID:   t.Value(r, "patient_id"),
			EpisodeID:   t.Value(r, "episode_id"),
			Description: t.Value(r, "diagnosis_description"),
			Code:        t.Value(r, "diagnosis_code"),
		}
	}
	return out
}

func DecodeMedications(t *Table, rows []Row) []model.Medication {
	out := make([]model.Medication, len(rows))
	for i, r := range rows {
		out[i] = model.Medication{
			PatientID:      t.Value(r, "patient_id"),
			EpisodeID:      t.Value(r, "episode_id"),
			Name:           t.Value(r, "medication_name"),
			Frequency:      t.Value(r, "frequency"),
			Reason:         t.Value(r, "reason"),
			Classification: t.Value(r, "classification"),
		}
	}
	return out
}

func DecodeVitals(t *Table, rows []Row) []model.Vital {
	out := make([]model.Vital, len(rows))
	for i, r := range rows {
		out[i] = model.Vital{
			PatientID: t.Value(r, "patient_id"),
			EpisodeID: t.Value(r, "episode_id"),
			VisitDate: t.Value(r, "visit_date"),
			Type:      t.Value(r, "vital_type"),
			Reading:   t.Value(r, "reading"),
			MinValue:  t.Value(r, "min_value"),
			MaxValue:  t.Value(r, "max_value"),
		}
	}
	return out
}

func DecodeWounds(t *Table, rows []Row) []model.Wound {
	out := make([]model.Wound, len(rows))
	for i, r := range rows {
		out[i] = model.Wound{
			PatientID:   t.Value(r, "patient_id"),
			EpisodeID:   t.Value(r, "episode_id"),
			Description: t.Value(r, "description"),
			Location:    t.Value(r, "location"),
			OnsetDate:   t.Value(r, "onset_date"),
			VisitDate:   t.Value(r, "visit_date"),
		}
	}
	return out
}

func DecodeAssessments(t *Table, rows []Row) []model.Assessment {
	out := make([]model.Assessment, len(rows))
	for i, r := range rows {
		out[i] = model.Assessment{
			PatientID:      t.Value(r, "patient_id"),
			AssessmentDate: t.Value(r, "assessment_date"),
			AssessmentType: t.Value(r, "assessment_type"),
			Grooming:       t.Value(r, "grooming"),
			Bathing:        t.Value(r, "bathing"),
			ToiletTransfer: t.Value(r, "toilet_transfer"),
			Transfer:       t.Value(r, "transfer"),
			Ambulation:     t.Value(r, "ambulation"),
		}
	}
	return out
}

func DecodeNotes(t *Table, rows []Row) []model.Note {
	out := make([]model.Note, len(rows))
	for i, r := range rows {
		out[i] = model.Note{
			PatientID: t.Value(r, "patient_id"),
			EpisodeID: t.Value(r, "episode_id"),
			NoteDate:  t.Value(r, "note_date"),
			NoteType:  t.Value(r, "note_type"),
			Text:      t.Value(r, "note_text"),
		}
	}
	return out
}
