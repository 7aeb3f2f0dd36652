package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
)

// Meta is the per-lot metadata file: MIR overrides, extra ATR notes and
// head/site defaults
type Meta struct {
	MIROverrides map[string]any `json:"mir_overrides" yaml:"mir_overrides"`
	ATREntries   []string       `json:"atr_entries" yaml:"atr_entries"`
	HeadNumber   *int           `json:"head_number" yaml:"head_number"`
	SiteNumber   *int           `json:"site_number" yaml:"site_number"`
}

// LoadMeta reads a metadata file. Files ending in .yaml or .yml are YAML,
// anything else is JSON.
func LoadMeta(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta Meta
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &meta)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&meta)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}
	return &meta, nil
}

// Apply copies the metadata into rc. Head and site numbers must fit in a byte.
func (m *Meta) Apply(rc *assemble.RunConfig) error {
	if m.HeadNumber != nil {
		if *m.HeadNumber < 0 || *m.HeadNumber > 255 {
			return fmt.Errorf("head_number %d out of range 0-255", *m.HeadNumber)
		}
		rc.HeadNumber = uint8(*m.HeadNumber)
	}
	if m.SiteNumber != nil {
		if *m.SiteNumber < 0 || *m.SiteNumber > 255 {
			return fmt.Errorf("site_number %d out of range 0-255", *m.SiteNumber)
		}
		rc.SiteNumber = uint8(*m.SiteNumber)
	}
	if len(m.MIROverrides) > 0 {
		rc.MIROverrides = m.MIROverrides
	}
	rc.ExtraLogEntries = append(rc.ExtraLogEntries, m.ATREntries...)
	return nil
}
