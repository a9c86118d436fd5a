// Package multitrack derives and validates multi-ROI readout regions for a
// CCD sensor used in multi-track spectroscopy.
//
// A track is a contiguous band of sensor rows read out as one region and
// optionally binned into fewer output rows. There are three use cases:
//
//  1. The user sets only the track start array. Each track is a single
//     row at those positions.
//  2. The user sets the start and end arrays. Each track is fully binned
//     between the two positions.
//  3. The user sets start, end and binning arrays for full manual control
//     of less-than-fully-binned tracks.
//
// The configurator owns three parallel integer arrays (start, end, bin) and
// keeps them mutually consistent: writing one array re-derives whichever of
// the others can be inferred from already-stored state, and posts an array
// to the host driver only when its derived values actually changed.
package multitrack

import (
	"fmt"
	"slices"
)

// Parameter names registered with the host driver.
const (
	TrackStartParam = "TRACK_START"
	TrackEndParam   = "TRACK_END"
	TrackBinParam   = "TRACK_BIN"
)

// Driver is the host parameter system the configurator registers its arrays
// with. The host serialises all calls into the configurator, so
// implementations are never called concurrently.
type Driver interface {
	// CreateParam registers a named integer-array parameter and returns an
	// opaque handle identifying it.
	CreateParam(name string) (int, error)

	// PostInt32Array delivers changed parameter values to downstream
	// consumers. It is called synchronously from inside a setter, only when
	// stored values differ from the previously posted ones, and always with
	// offset 0. Implementations must not retain or modify values.
	PostInt32Array(param int, values []int, offset int)
}

// MultiTrack holds the readout geometry for an ordered set of tracks. Rows
// are numbered from 1; tracks are indexed from 0 by ascending position on
// the sensor. The zero value is not usable; construct with New.
//
// MultiTrack is not safe for concurrent use. The host driver holds its port
// lock across every call.
type MultiTrack struct {
	driver Driver

	startParam int
	endParam   int
	binParam   int

	starts []int
	ends   []int
	bins   []int
}

// New registers the three track parameters with the driver and returns a
// configurator with no tracks defined.
func New(driver Driver) (*MultiTrack, error) {
	m := &MultiTrack{driver: driver}
	var err error
	if m.startParam, err = driver.CreateParam(TrackStartParam); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", TrackStartParam, err)
	}
	if m.endParam, err = driver.CreateParam(TrackEndParam); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", TrackEndParam, err)
	}
	if m.binParam, err = driver.CreateParam(TrackBinParam); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", TrackBinParam, err)
	}
	return m, nil
}

// Parameter handles assigned by the driver at construction.

func (m *MultiTrack) StartParam() int { return m.startParam }
func (m *MultiTrack) EndParam() int   { return m.endParam }
func (m *MultiTrack) BinParam() int   { return m.binParam }

// Stored-state accessors with defaults. These resolve the start/end/bin
// derivation cycle: a track with no stored end is a single row, and a track
// with no stored binning is fully binned (one output row).
func (m *MultiTrack) start(i int) int {
	if i < len(m.starts) {
		return m.starts[i]
	}
	return 0
}

func (m *MultiTrack) end(i int) int {
	if i < len(m.ends) {
		return m.ends[i]
	}
	return m.start(i)
}

func (m *MultiTrack) height(i int) int {
	return m.end(i) + 1 - m.start(i)
}

func (m *MultiTrack) bin(i int) int {
	if i < len(m.bins) {
		return m.bins[i]
	}
	return m.height(i)
}

// postIfChanged commits a derived array and notifies the driver, but only
// when the derived values differ from what is already stored.
func (m *MultiTrack) postIfChanged(stored *[]int, derived []int, param int) {
	if slices.Equal(*stored, derived) {
		return
	}
	*stored = derived
	m.driver.PostInt32Array(param, derived, 0)
}

// SetTrackStarts replaces the track start array. Values are validated in
// full before any state changes: each start must be >= 1 and the sequence
// strictly ascending. On success the end and bin arrays are re-derived from
// stored state and posted to the driver if they changed.
func (m *MultiTrack) SetTrackStarts(values []int) error {
	for i, v := range values {
		if v < 1 {
			return &ValidationError{
				Kind:    StartRange,
				Message: fmt.Sprintf("track starts must be >= 1 (track %d is %d)", i, v),
			}
		}
		if i > 0 && v <= values[i-1] {
			return &ValidationError{
				Kind:    StartOrder,
				Message: fmt.Sprintf("track starts must be in ascending order (track %d is %d, follows %d)", i, v, values[i-1]),
			}
		}
	}

	// Compute both candidate arrays against the old end and bin state before
	// committing either, so one commit cannot feed the other's derivation.
	m.starts = slices.Clone(values)
	ends := make([]int, len(m.starts))
	for i := range ends {
		// If binning is already set, this pins the track end.
		ends[i] = m.start(i) + m.height(i) - 1
	}
	bins := make([]int, len(m.starts))
	for i := range bins {
		// If the track end is already set, this pins the binning.
		bins[i] = m.bin(i)
	}

	m.postIfChanged(&m.ends, ends, m.endParam)
	m.postIfChanged(&m.bins, bins, m.binParam)
	return nil
}

// SetTrackEnds replaces the track end array. Each end must be >= 2 and the
// sequence strictly ascending. A committed end array pins the binning to the
// full track height (one output row per track); the re-derived bin array is
// posted to the driver if it changed.
func (m *MultiTrack) SetTrackEnds(values []int) error {
	for i, v := range values {
		if v < 2 {
			return &ValidationError{
				Kind:    EndRange,
				Message: fmt.Sprintf("track ends must be >= 2 (track %d is %d)", i, v),
			}
		}
		if i > 0 && v <= values[i-1] {
			return &ValidationError{
				Kind:    EndOrder,
				Message: fmt.Sprintf("track ends must be in ascending order (track %d is %d, follows %d)", i, v, values[i-1]),
			}
		}
	}

	m.ends = slices.Clone(values)
	bins := make([]int, len(m.ends))
	for i := range bins {
		bins[i] = m.height(i)
	}

	m.postIfChanged(&m.bins, bins, m.binParam)
	return nil
}

// SetTrackBins replaces the track binning array. Each binning factor must be
// >= 1 and must evenly divide the current height of its track. Binning is
// the last-resolved field, so no further derivation or notification fires.
func (m *MultiTrack) SetTrackBins(values []int) error {
	for i, v := range values {
		if v < 1 {
			return &ValidationError{
				Kind:    BinRange,
				Message: fmt.Sprintf("track binning must be >= 1 (track %d is %d)", i, v),
			}
		}
		if m.height(i)%v != 0 {
			return &ValidationError{
				Kind:    BinDivisibility,
				Message: fmt.Sprintf("track height must be divisible by binning (track %d height %d, binning %d)", i, m.height(i), v),
			}
		}
	}

	m.bins = slices.Clone(values)
	return nil
}

// Write routes an integer-array write to the setter owning the given
// parameter handle.
func (m *MultiTrack) Write(function int, values []int) error {
	switch function {
	case m.startParam:
		return m.SetTrackStarts(values)
	case m.endParam:
		return m.SetTrackEnds(values)
	case m.binParam:
		return m.SetTrackBins(values)
	}
	return &ValidationError{
		Kind:    UnknownField,
		Message: fmt.Sprintf("unknown parameter handle %d", function),
	}
}

// TrackCount returns the number of configured tracks.
func (m *MultiTrack) TrackCount() int { return len(m.starts) }

func (m *MultiTrack) checkIndex(i int) error {
	if i < 0 || i >= len(m.starts) {
		return fmt.Errorf("track %d out of range (%d tracks configured)", i, len(m.starts))
	}
	return nil
}

// TrackStart returns the first sensor row of track i.
func (m *MultiTrack) TrackStart(i int) (int, error) {
	if err := m.checkIndex(i); err != nil {
		return 0, err
	}
	return m.start(i), nil
}

// TrackEnd returns the last sensor row of track i.
func (m *MultiTrack) TrackEnd(i int) (int, error) {
	if err := m.checkIndex(i); err != nil {
		return 0, err
	}
	return m.end(i), nil
}

// TrackBin returns the binning factor of track i.
func (m *MultiTrack) TrackBin(i int) (int, error) {
	if err := m.checkIndex(i); err != nil {
		return 0, err
	}
	return m.bin(i), nil
}

// TrackHeight returns the physical row span of track i (end - start + 1).
func (m *MultiTrack) TrackHeight(i int) (int, error) {
	if err := m.checkIndex(i); err != nil {
		return 0, err
	}
	return m.height(i), nil
}

// DataHeight returns the number of output rows track i contributes after
// binning.
func (m *MultiTrack) DataHeight(i int) (int, error) {
	if err := m.checkIndex(i); err != nil {
		return 0, err
	}
	b := m.bin(i)
	if b == 0 {
		return 0, fmt.Errorf("track %d has zero binning", i)
	}
	return m.height(i) / b, nil
}

// TotalDataHeight returns the number of output rows across all tracks.
func (m *MultiTrack) TotalDataHeight() int {
	total := 0
	for i := range m.starts {
		if b := m.bin(i); b != 0 {
			total += m.height(i) / b
		}
	}
	return total
}

// Snapshot accessors. The returned slices are copies.

func (m *MultiTrack) TrackStarts() []int { return slices.Clone(m.starts) }
func (m *MultiTrack) TrackEnds() []int   { return slices.Clone(m.ends) }
func (m *MultiTrack) TrackBins() []int   { return slices.Clone(m.bins) }
