package persona

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// BundleVersion identifies the export bundle format.
const BundleVersion = "1.0.0"

// Bundle is a portable collection of personas for export/import.
type Bundle struct {
	Version    string     `yaml:"version"`
	ExportedAt time.Time  `yaml:"exportedAt"`
	Personas   []*Persona `yaml:"personas"`
}

// ExportBundle serializes personas into a YAML bundle.
func ExportBundle(personas []*Persona) ([]byte, error) {
	bundle := Bundle{
		Version:    BundleVersion,
		ExportedAt: time.Now(),
		Personas:   personas,
	}
	data, err := yaml.Marshal(&bundle)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	return data, nil
}

// ImportBundle parses a YAML bundle and validates its contents. Personas
// with missing ids or names are rejected; the bundle version must be set.
func ImportBundle(data []byte) (*Bundle, error) {
	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("unmarshal bundle: %w", err)
	}
	if bundle.Version == "" {
		return nil, fmt.Errorf("bundle has no version")
	}
	for i, p := range bundle.Personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona %d has no id", i)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("persona %q has no name", p.ID)
		}
	}
	return &bundle, nil
}
