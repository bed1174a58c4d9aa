package parking

import (
	"fmt"
	"time"
)

// PeakWindow marks an inclusive range of clock hours during which traffic
// runs at the peak multiplier. StartHour 7 and EndHour 9 cover 07:00:00
// through 09:59:59.
type PeakWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

func (w PeakWindow) contains(hour int) bool {
	return hour >= w.StartHour && hour <= w.EndHour
}

// RateModel yields the effective entry and exit rates, in vehicles per
// hour, for a given wall-clock time. It is immutable after construction
// and safe for concurrent use.
type RateModel struct {
	baseEntry  float64
	baseExit   float64
	multiplier float64
	windows    []PeakWindow
}

func NewRateModel(baseEntry, baseExit, multiplier float64, windows []PeakWindow) (*RateModel, error) {
	if baseEntry < 0 || baseExit < 0 {
		return nil, fmt.Errorf("negative traffic rate: %w", ErrInvalidConfig)
	}
	if multiplier <= 0 {
		return nil, fmt.Errorf("peak multiplier must be positive, got %.2f: %w", multiplier, ErrInvalidConfig)
	}
	for _, w := range windows {
		if w.StartHour < 0 || w.EndHour > 23 || w.StartHour > w.EndHour {
			return nil, fmt.Errorf("peak window %d-%d out of range: %w", w.StartHour, w.EndHour, ErrInvalidConfig)
		}
	}
	return &RateModel{
		baseEntry:  baseEntry,
		baseExit:   baseExit,
		multiplier: multiplier,
		windows:    append([]PeakWindow(nil), windows...),
	}, nil
}

func (m *RateModel) IsPeak(now time.Time) bool {
	hour := now.Hour()
	for _, w := range m.windows {
		if w.contains(hour) {
			return true
		}
	}
	return false
}

func (m *RateModel) EntryRate(now time.Time) float64 {
	if m.IsPeak(now) {
		return m.baseEntry * m.multiplier
	}
	return m.baseEntry
}

func (m *RateModel) ExitRate(now time.Time) float64 {
	if m.IsPeak(now) {
		return m.baseExit * m.multiplier
	}
	return m.baseExit
}

func (m *RateModel) Windows() []PeakWindow {
	return append([]PeakWindow(nil), m.windows...)
}
