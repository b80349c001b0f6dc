package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirSource reads datasets from files in a directory. By default dataset
// "vitals" is vitals.csv, falling back to vitals.parquet. Files overrides the
// file name (or absolute path) per dataset.
type DirSource struct {
	Dir   string
	Files map[string]string
}

// NewDirSource returns a DirSource rooted at dir.
func NewDirSource(dir string, files map[string]string) *DirSource {
	return &DirSource{Dir: dir, Files: files}
}

// Locate returns the path backing dataset, or a MissingDataset error.
func (s *DirSource) Locate(dataset string) (string, error) {
	if name, ok := s.Files[dataset]; ok && name != "" {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.Dir, name)
		}
		if _, err := os.Stat(path); err != nil {
			return "", missing(dataset, path, err)
		}
		return path, nil
	}

	var firstErr error
	for _, ext := range []string{".csv", ".parquet"} {
		path := filepath.Join(s.Dir, dataset+ext)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", missing(dataset, filepath.Join(s.Dir, dataset+".csv"), firstErr)
}

// Open locates and parses the dataset file.
func (s *DirSource) Open(ctx context.Context, dataset string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Locate(dataset)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return readParquet(dataset, path)
	}
	return readCSV(dataset, path)
}

func readCSV(dataset, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, missing(dataset, path, err)
		}
		return nil, unreadable(dataset, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, unreadable(dataset, path, fmt.Errorf("no header row"))
	}
	if err != nil {
		return nil, unreadable(dataset, path, err)
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, unreadable(dataset, path, err)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, unreadable(dataset, path,
				fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec)))
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && len(header) > 1 {
			continue
		}
		rows = append(rows, Row(rec))
	}
	return NewTable(dataset, path, header, rows), nil
}
