package parking

import (
	"fmt"
	"math"
	"time"
)

// Stays shorter than one hour are charged as a full hour.
const minimumChargeHours = 1.0

// FeeSchedule maps vehicle classes to hourly rates. It is immutable after
// construction and safe for concurrent use.
type FeeSchedule struct {
	hourly map[VehicleClass]float64
}

func NewFeeSchedule(hourly map[VehicleClass]float64) (*FeeSchedule, error) {
	if len(hourly) == 0 {
		return nil, fmt.Errorf("empty rate table: %w", ErrInvalidConfig)
	}
	rates := make(map[VehicleClass]float64, len(hourly))
	for class, rate := range hourly {
		if !class.Valid() {
			return nil, fmt.Errorf("rate table has unknown class %q: %w", class, ErrInvalidConfig)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("rate for class %q must be positive, got %.2f: %w", class, rate, ErrInvalidConfig)
		}
		rates[class] = rate
	}
	return &FeeSchedule{hourly: rates}, nil
}

// Calculate returns the parking fee for a stay, rounded to two decimals.
// It is a pure function of its arguments.
func (s *FeeSchedule) Calculate(class VehicleClass, entry, exit time.Time) (float64, error) {
	rate, ok := s.hourly[class]
	if !ok {
		return 0, fmt.Errorf("no rate for vehicle class %q", class)
	}
	if exit.Before(entry) {
		return 0, fmt.Errorf("exit %s precedes entry %s", exit.Format(time.RFC3339), entry.Format(time.RFC3339))
	}
	hours := exit.Sub(entry).Hours()
	if hours < minimumChargeHours {
		hours = minimumChargeHours
	}
	return math.Round(rate*hours*100) / 100, nil
}

// Rate exposes the hourly rate for a class, mainly for display surfaces.
func (s *FeeSchedule) Rate(class VehicleClass) (float64, bool) {
	rate, ok := s.hourly[class]
	return rate, ok
}
