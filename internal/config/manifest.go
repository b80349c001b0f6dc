package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/clinsum/internal/model"
)

// DatasetOverride renames where one dataset is read from.
type DatasetOverride struct {
	File  string `yaml:"file"`
	Table string `yaml:"table"`
}

// Manifest is the on-disk YAML structure:
//
//	datasets:
//	  vitals:
//	    file: vitals_2024.csv
//	    table: vitals_v2
type Manifest struct {
	Datasets map[string]DatasetOverride `yaml:"datasets"`
}

// LoadManifest reads a dataset manifest. Every key must name a known dataset.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for name := range m.Datasets {
		if _, ok := model.RecordTypeByName(name); !ok {
			return nil, fmt.Errorf("unknown dataset %q in manifest (want one of: %s)",
				name, strings.Join(model.DatasetNames(), ", "))
		}
	}
	return &m, nil
}

// Files returns the file name overrides keyed by dataset.
func (m *Manifest) Files() map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for name, o := range m.Datasets {
		if o.File != "" {
			out[name] = o.File
		}
	}
	return out
}

// Tables returns the table name overrides keyed by dataset.
func (m *Manifest) Tables() map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for name, o := range m.Datasets {
		if o.Table != "" {
			out[name] = o.Table
		}
	}
	return out
}
