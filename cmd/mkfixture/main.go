// mkfixture writes a small synthetic set of the six clinical datasets for
// local runs and demos. Output is deterministic for a given seed.
// Usage: go run ./cmd/mkfixture --out testdata/sample --patients 5 --format parquet
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/gyeh/clinsum/internal/model"
	"github.com/gyeh/clinsum/internal/normalize"
)

type fixture struct {
	diagnoses   []model.Diagnosis
	medications []model.Medication
	vitals      []model.Vital
	wounds      []model.Wound
	assessments []model.Assessment
	notes       []model.Note
}

var (
	diagnosisPool = [][2]string{
		{"Type 2 diabetes mellitus without complications", "E11.9"},
		{"Essential (primary) hypertension", "I10"},
		{"Heart failure, unspecified", "I50.9"},
		{"Chronic obstructive pulmonary disease, unspecified", "J44.9"},
		{"Pressure ulcer of sacral region, stage 2", "L89.152"},
	}
	medicationPool = [][4]string{
		{"Metformin 500mg", "BID", "Diabetes", "Antidiabetic"},
		{"Lisinopril 10mg", "Daily", "Hypertension", "ACE inhibitor"},
		{"Furosemide 20mg", "Daily", "Edema", "Diuretic"},
		{"Albuterol inhaler", "PRN", "Shortness of breath", "Bronchodilator"},
	}
	woundSites = [][2]string{
		{"Stage 2 pressure ulcer", "Sacrum"},
		{"Venous stasis ulcer", "Left lower leg"},
		{"Surgical incision", "Abdomen"},
	}
	noteTexts = []string{
		"Patient alert and oriented. Tolerating medications without side effects.",
		"Wound bed pink with moderate serous drainage. Dressing changed.",
		"Caregiver educated on fall precautions. Patient ambulating with walker.",
		"Blood glucose log reviewed; readings within target range.",
	}
	functionalScores = []string{"0", "1", "2", "3"}
)

func main() {
	out := flag.String("out", "testdata/sample", "output directory")
	patients := flag.Int("patients", 5, "number of patients")
	visits := flag.Int("visits", 3, "visits per patient")
	format := flag.String("format", "csv", "output format: csv or parquet")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *format != "csv" && *format != "parquet" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(1)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	fx := generate(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), *patients, *visits)

	var err error
	if *format == "parquet" {
		err = writeAllParquet(*out, fx)
	} else {
		err = writeAllCSV(*out, fx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "write fixture: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d patients to %s (%s): %d vitals, %d notes, %d assessments\n",
		*patients, *out, *format, len(fx.vitals), len(fx.notes), len(fx.assessments))
}

func generate(rng *rand.Rand, patients, visits int) *fixture {
	fx := &fixture{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for p := 1; p <= patients; p++ {
		pid := fmt.Sprintf("P%04d", p)
		eid := fmt.Sprintf("E%04d-1", p)

		d := diagnosisPool[rng.IntN(len(diagnosisPool))]
		fx.diagnoses = append(fx.diagnoses, model.Diagnosis{PatientID: pid, EpisodeID: eid, Description: d[0], Code: d[1]})

		for _, i := range rng.Perm(len(medicationPool))[:1+rng.IntN(len(medicationPool))] {
			m := medicationPool[i]
			fx.medications = append(fx.medications, model.Medication{
				PatientID: pid, EpisodeID: eid, Name: m[0], Frequency: m[1], Reason: m[2], Classification: m[3],
			})
		}

		// Every third patient has no wounds, so the fallback path shows up.
		hasWound := p%3 != 0
		onset := base.AddDate(0, 0, -rng.IntN(30))
		site := woundSites[rng.IntN(len(woundSites))]

		for v := 0; v < visits; v++ {
			day := normalize.FormatDay(base.AddDate(0, 0, 7*v+rng.IntN(3)))
			systolic := 110 + rng.IntN(40)
			fx.vitals = append(fx.vitals,
				model.Vital{PatientID: pid, EpisodeID: eid, VisitDate: day, Type: "Blood Pressure",
					Reading: fmt.Sprintf("%d/%d", systolic, 70+rng.IntN(20)), MinValue: "90", MaxValue: "140"},
				model.Vital{PatientID: pid, EpisodeID: eid, VisitDate: day, Type: "Pulse",
					Reading: fmt.Sprint(60 + rng.IntN(40)), MinValue: "60", MaxValue: "100"},
			)
			if hasWound {
				fx.wounds = append(fx.wounds, model.Wound{
					PatientID: pid, EpisodeID: eid, Description: site[0], Location: site[1],
					OnsetDate: normalize.FormatDay(onset), VisitDate: day,
				})
			}
			fx.notes = append(fx.notes, model.Note{
				PatientID: pid, EpisodeID: eid, NoteDate: day, NoteType: "Skilled Nursing Visit",
				Text: noteTexts[rng.IntN(len(noteTexts))],
			})
		}

		for i, kind := range []string{"SOC", "ROC"} {
			a := model.Assessment{
				PatientID:      pid,
				AssessmentDate: normalize.FormatDay(base.AddDate(0, 0, 14*i)),
				AssessmentType: kind,
				Grooming:       functionalScores[rng.IntN(len(functionalScores))],
				Bathing:        functionalScores[rng.IntN(len(functionalScores))],
				ToiletTransfer: functionalScores[rng.IntN(len(functionalScores))],
				Transfer:       functionalScores[rng.IntN(len(functionalScores))],
				Ambulation:     functionalScores[rng.IntN(len(functionalScores))],
			}
			fx.assessments = append(fx.assessments, a)
			if i == 0 {
				// Exact duplicate rows occur in real exports.
				fx.assessments = append(fx.assessments, a)
			}
		}
	}
	return fx
}

func writeParquetFile[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := goparquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writeAllParquet(dir string, fx *fixture) error {
	path := func(rt model.RecordType) string { return filepath.Join(dir, rt.Name+".parquet") }
	for _, err := range []error{
		writeParquetFile(path(model.Diagnoses), fx.diagnoses),
		writeParquetFile(path(model.Medications), fx.medications),
		writeParquetFile(path(model.Vitals), fx.vitals),
		writeParquetFile(path(model.Wounds), fx.wounds),
		writeParquetFile(path(model.Assessments), fx.assessments),
		writeParquetFile(path(model.Notes), fx.notes),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile[T any](path string, columns []string, rows []T, values func(T) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(values(r)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeAllCSV(dir string, fx *fixture) error {
	path := func(rt model.RecordType) string { return filepath.Join(dir, rt.Name+".csv") }
	for _, err := range []error{
		writeCSVFile(path(model.Diagnoses), model.Diagnoses.Required, fx.diagnoses, func(d model.Diagnosis) []string {
			return []string{d.PatientID, d.EpisodeID, d.Description, d.Code}
		}),
		writeCSVFile(path(model.Medications), model.Medications.Required, fx.medications, func(m model.Medication) []string {
			return []string{m.PatientID, m.EpisodeID, m.Name, m.Frequency, m.Reason, m.Classification}
		}),
		writeCSVFile(path(model.Vitals), model.Vitals.Required, fx.vitals, func(v model.Vital) []string {
			return []string{v.PatientID, v.EpisodeID, v.VisitDate, v.Type, v.Reading, v.MinValue, v.MaxValue}
		}),
		writeCSVFile(path(model.Wounds), model.Wounds.Required, fx.wounds, func(w model.Wound) []string {
			return []string{w.PatientID, w.EpisodeID, w.Description, w.Location, w.OnsetDate, w.VisitDate}
		}),
		writeCSVFile(path(model.Assessments), model.Assessments.Required, fx.assessments, func(a model.Assessment) []string {
			return []string{a.PatientID, a.AssessmentDate, a.AssessmentType, a.Grooming, a.Bathing, a.ToiletTransfer, a.Transfer, a.Ambulation}
		}),
		writeCSVFile(path(model.Notes), model.Notes.Required, fx.notes, func(n model.Note) []string {
			return []string{n.PatientID, n.EpisodeID, n.NoteDate, n.NoteType, n.Text}
		}),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
