package model

// RecordType describes one of the six clinical record collections.
type RecordType struct {
	Name       string   // dataset name, e.g. "vitals"
	Label      string   // human label for reports
	Required   []string // columns that must be present
	DateColumn string   // column used for recency selection; "" when undated
}

var (
	Diagnoses = RecordType{
		Name:     "diagnoses",
		Label:    "Diagnoses",
		Required: []string{"patient_id", "episode_id", "diagnosis_description", "diagnosis_code"},
	}
	Medications = RecordType{
		Name:     "medications",
		Label:    "Medications",
		Required: []string{"patient_id", "episode_id", "medication_name", "frequency", "reason", "classification"},
	}
	Vitals = RecordType{
		Name:       "vitals",
		Label:      "Vital signs",
		Required:   []string{"patient_id", "episode_id", "visit_date", "vital_type", "reading", "min_value", "max_value"},
		DateColumn: "visit_date",
	}
	Wounds = RecordType{
		Name:       "wounds",
		Label:      "Wounds",
		Required:   []string{"patient_id", "episode_id", "description", "location", "onset_date", "visit_date"},
		DateColumn: "visit_date",
	}
	Assessments = RecordType{
		Name:       "oasis",
		Label:      "OASIS assessments",
		Required:   []string{"patient_id", "assessment_date", "assessment_type", "grooming", "bathing", "toilet_transfer", "transfer", "ambulation"},
		DateColumn: "assessment_date",
	}
	Notes = RecordType{
		Name:       "notes",
		Label:      "Clinical notes",
		Required:   []string{"patient_id", "episode_id", "note_date", "note_type", "note_text"},
		DateColumn: "note_date",
	}
)

// AllRecordTypes lists the record types in context section order.
var AllRecordTypes = []RecordType{Diagnoses, Vitals, Wounds, Medications, Notes, Assessments}

// RecordTypeByName returns the RecordType for the given dataset name, or ok=false.
func RecordTypeByName(name string) (RecordType, bool) {
	for _, rt := range AllRecordTypes {
		if rt.Name == name {
			return rt, true
		}
	}
	return RecordType{}, false
}

// DatasetNames returns the dataset names of all record types.
func DatasetNames() []string {
	names := make([]string, len(AllRecordTypes))
	for i, rt := range AllRecordTypes {
		names[i] = rt.Name
	}
	return names
}
