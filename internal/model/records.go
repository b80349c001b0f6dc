package model

// The record structs carry parquet tags so fixtures can be written with
// parquet.GenericWriter and match the column names the loader validates.
// All values are kept as text; dates are parsed only when compared.

type Diagnosis struct {
	PatientID   string `parquet:"patient_id" json:"patient_id"`
	EpisodeID   string `parquet:"episode_id" json:"episode_id"`
	Description string `parquet:"diagnosis_description" json:"diagnosis_description"`
	Code        string `parquet:"diagnosis_code" json:"diagnosis_code"`
}

type Medication struct {
	PatientID      string `parquet:"patient_id" json:"patient_id"`
	EpisodeID      string `parquet:"episode_id" json:"episode_id"`
	Name           string `parquet:"medication_name" json:"medication_name"`
	Frequency      string `parquet:"frequency" json:"frequency"`
	Reason         string `parquet:"reason" json:"reason"`
	Classification string `parquet:"classification" json:"classification"`
}

type Vital struct {
	PatientID string `parquet:"patient_id" json:"patient_id"`
	EpisodeID string `parquet:"episode_id" json:"episode_id"`
	VisitDate string `parquet:"visit_date" json:"visit_date"`
	Type      string `parquet:"vital_type" json:"vital_type"`
	Reading   string `parquet:"reading" json:"reading"`
	MinValue  string `parquet:"min_value" json:"min_value"`
	MaxValue  string `parquet:"max_value" json:"max_value"`
}

type Wound struct {
	PatientID   string `parquet:"patient_id" json:"patient_id"`
	EpisodeID   string `parquet:"episode_id" json:"episode_id"`
	Description string `parquet:"description" json:"description"`
	Location    string `parquet:"location" json:"location"`
	OnsetDate   string `parquet:"onset_date" json:"onset_date"`
	VisitDate   string `parquet:"visit_date" json:"visit_date"`
}

// Assessment is one OASIS functional assessment row.
type Assessment struct {
	PatientID      string `parquet:"patient_id" json:"patient_id"`
	AssessmentDate string `parquet:"assessment_date" json:"assessment_date"`
	AssessmentType string `parquet:"assessment_type" json:"assessment_type"`
	Grooming       string `parquet:"grooming" json:"grooming"`
	Bathing        string `parquet:"bathing" json:"bathing"`
	ToiletTransfer string `parquet:"toilet_transfer" json:"toilet_transfer"`
	Transfer       string `parquet:"transfer" json:"transfer"`
	Ambulation     string `parquet:"ambulation" json:"ambulation"`
}

type Note struct {
	PatientID string `parquet:"patient_id" json:"patient_id"`
	EpisodeID string `parquet:"episode_id" json:"episode_id"`
	NoteDate  string `parquet:"note_date" json:"note_date"`
	NoteType  string `parquet:"note_type" json:"note_type"`
	Text      string `parquet:"note_text" json:"note_text"`
}
