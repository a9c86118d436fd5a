// Package config loads track layout files for the multitrack configurator.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/multitrack/internal/multitrack"
)

// TrackLayout describes a multi-track readout layout. The schema matches the
// /api/tracks endpoint so the same JSON can be used for both startup
// configuration and runtime updates.
//
// Starts is required. Ends and Bins are optional: the configurator derives
// single-row tracks when Ends is omitted and fully-binned tracks when Bins
// is omitted.
type TrackLayout struct {
	Starts []int `json:"starts"`
	Ends   []int `json:"ends,omitempty"`
	Bins   []int `json:"bins,omitempty"`
}

// LoadTrackLayout loads a TrackLayout from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size.
func LoadTrackLayout(path string) (*TrackLayout, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("layout file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat layout file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("layout file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout TrackLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout JSON: %w", err)
	}

	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	return &layout, nil
}

// Validate checks array lengths. Value-level validation (row ranges,
// ordering, divisibility) is the configurator's job.
func (l *TrackLayout) Validate() error {
	if len(l.Starts) == 0 {
		return fmt.Errorf("layout must define at least one track start")
	}
	if len(l.Ends) != 0 && len(l.Ends) != len(l.Starts) {
		return fmt.Errorf("ends length %d does not match starts length %d", len(l.Ends), len(l.Starts))
	}
	if len(l.Bins) != 0 && len(l.Bins) != len(l.Starts) {
		return fmt.Errorf("bins length %d does not match starts length %d", len(l.Bins), len(l.Starts))
	}
	return nil
}

// Apply writes the layout into the configurator: starts, then ends, then
// bins. Omitted arrays are skipped so the configurator's derivation fills
// them in. The first validation failure aborts the remaining writes.
func (l *TrackLayout) Apply(mt *multitrack.MultiTrack) error {
	if err := mt.SetTrackStarts(l.Starts); err != nil {
		return fmt.Errorf("failed to apply track starts: %w", err)
	}
	if len(l.Ends) > 0 {
		if err := mt.SetTrackEnds(l.Ends); err != nil {
			return fmt.Errorf("failed to apply track ends: %w", err)
		}
	}
	if len(l.Bins) > 0 {
		if err := mt.SetTrackBins(l.Bins); err != nil {
			return fmt.Errorf("failed to apply track bins: %w", err)
		}
	}
	return nil
}
