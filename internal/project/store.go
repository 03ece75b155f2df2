// Package project persists instances as versioned JSON files, keeping one
// backup generation on overwrite.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/rectcheck/internal/model"
)

// fileFormat is the on-disk envelope around an instance.
type fileFormat struct {
	Version   string         `json:"version"`
	CreatedAt string         `json:"created_at"`
	Instance  model.Instance `json:"instance"`
}

const formatVersion = "1.0.0"

// SaveInstance validates and writes the instance to path. The write goes to
// a temporary file first, and an existing file at path is kept as path.bak.
func SaveInstance(path string, inst model.Instance) error {
	if err := inst.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	payload := fileFormat{
		Version:   formatVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Instance:  inst,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal instance: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("failed to rotate backup: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write instance file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize instance file: %w", err)
	}
	return nil
}

// LoadInstance reads and validates an instance file written by SaveInstance.
func LoadInstance(path string) (model.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Instance{}, fmt.Errorf("failed to read instance file: %w", err)
	}
	var payload fileFormat
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Instance{}, fmt.Errorf("failed to parse instance file: %w", err)
	}
	if payload.Version == "" {
		return model.Instance{}, fmt.Errorf("invalid instance file: missing version field")
	}
	if payload.Instance.Items == nil {
		payload.Instance.Items = []model.Item{}
	}
	if payload.Instance.Obstacles == nil {
		payload.Instance.Obstacles = []model.Obstacle{}
	}
	if err := payload.Instance.Validate(); err != nil {
		return model.Instance{}, fmt.Errorf("invalid instance file: %w", err)
	}
	return payload.Instance, nil
}
