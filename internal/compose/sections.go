package compose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gyeh/clinsum/internal/model"
	"github.com/gyeh/clinsum/internal/normalize"
	"github.com/gyeh/clinsum/internal/recency"
)

// Fallback text used when a section has no data.
const (
	DiagnosisFallback   = "Primary Diagnosis: Not documented."
	VitalsFallback      = "Recent Vital Signs: No data available."
	WoundsFallback      = "Active Wounds:\n- No active wounds documented."
	MedicationsFallback = "Current Medications:\n- No medications documented."
	NotesFallback       = "Recent Clinical Notes:\n- No recent notes."
	FunctionalFallback  = "Functional Status:\n- No assessment data available."
)

// Section headers, in output order. Dated headers embed the selected day.
const (
	DiagnosesHeader   = "Primary Diagnoses"
	VitalsHeader      = "Recent Vital Signs"
	WoundsHeader      = "Active Wounds"
	MedicationsHeader = "Current Medications"
	NotesHeader       = "Recent Clinical Notes"
	FunctionalHeader  = "Functional Status"
)

// SectionOrder lists the section headers in the order they are rendered.
var SectionOrder = []string{
	DiagnosesHeader,
	VitalsHeader,
	WoundsHeader,
	MedicationsHeader,
	NotesHeader,
	FunctionalHeader,
}

// Assessment orderings for the functional status section.
const (
	// OrderLatest picks the assessment with the latest assessment_date.
	OrderLatest = "latest"
	// OrderFile picks the first assessment after duplicate removal.
	OrderFile = "file"
)

// DiagnosisResult is the outcome of the diagnosis lookup: either the
// documented descriptions or NotDocumented with the reason.
type DiagnosisResult struct {
	Descriptions  []string
	NotDocumented bool
	Reason        error
}

func block(header string, lines []string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(":")
	for _, l := range lines {
		b.WriteString("\n- ")
		b.WriteString(l)
	}
	return strings.TrimSpace(b.String())
}

func renderDiagnoses(r DiagnosisResult) string {
	if r.NotDocumented || len(r.Descriptions) == 0 {
		return DiagnosisFallback
	}
	return block(DiagnosesHeader, r.Descriptions)
}

func renderVitals(vitals []model.Vital) (string, int) {
	sel, ok := recency.MostRecent(vitals, func(v model.Vital) string { return v.VisitDate })
	if !ok {
		return VitalsFallback, sel.Skipped
	}
	lines := make([]string, len(sel.Rows))
	for i, v := range sel.Rows {
		lines[i] = fmt.Sprintf("%s: %s", v.Type, v.Reading)
	}
	return block(fmt.Sprintf("%s (Visit: %s)", VitalsHeader, sel.DateString()), lines), sel.Skipped
}

func renderWounds(wounds []model.Wound) (string, int) {
	sel, ok := recency.MostRecent(wounds, func(w model.Wound) string { return w.VisitDate })
	if !ok {
		return WoundsFallback, sel.Skipped
	}
	lines := make([]string, len(sel.Rows))
	for i, w := range sel.Rows {
		lines[i] = fmt.Sprintf("%s at %s", w.Description, w.Location)
	}
	return block(fmt.Sprintf("%s (Latest assessment: %s)", WoundsHeader, sel.DateString()), lines), sel.Skipped
}

func renderMedications(meds []model.Medication) string {
	if len(meds) == 0 {
		return MedicationsFallback
	}
	lines := make([]string, len(meds))
	for i, m := range meds {
		lines[i] = fmt.Sprintf("%s (%s) for %s", m.Name, m.Frequency, m.Reason)
	}
	return block(MedicationsHeader, lines)
}

func renderNotes(notes []model.Note) (string, int) {
	sel, ok := recency.MostRecent(notes, func(n model.Note) string { return n.NoteDate })
	if !ok {
		return NotesFallback, sel.Skipped
	}
	lines := make([]string, len(sel.Rows))
	for i, n := range sel.Rows {
		lines[i] = n.Text
	}
	return block(fmt.Sprintf("%s (Date: %s)", NotesHeader, sel.DateString()), lines), sel.Skipped
}

// pickAssessment chooses the assessment to report. With OrderLatest the rows
// are stably sorted by date descending and rows without a usable date sort
// last; with OrderFile the first row wins.
func pickAssessment(rows []model.Assessment, order string) (model.Assessment, bool) {
	if len(rows) == 0 {
		return model.Assessment{}, false
	}
	if order == OrderFile {
		return rows[0], true
	}

	sorted := make([]model.Assessment, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, oki := normalize.ParseDay(sorted[i].AssessmentDate)
		dj, okj := normalize.ParseDay(sorted[j].AssessmentDate)
		if oki != okj {
			return oki
		}
		return oki && di.After(dj)
	})
	return sorted[0], true
}

func renderFunctional(rows []model.Assessment, order string) string {
	a, ok := pickAssessment(rows, order)
	if !ok {
		return FunctionalFallback
	}
	return block(fmt.Sprintf("%s (Assessment: %s)", FunctionalHeader, a.AssessmentType), []string{
		fmt.Sprintf("Grooming: %s, Bathing: %s", a.Grooming, a.Bathing),
		fmt.Sprintf("Transfers: %s, Ambulation: %s", a.Transfer, a.Ambulation),
	})
}
