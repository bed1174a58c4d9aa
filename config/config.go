package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"parking-tower/internal/parking"
)

type Config struct {
	Port        string
	Environment string

	OTelServiceName string
	OTelEndpoint    string

	// EventHistoryLimit caps the in-memory event buffer served over HTTP.
	EventHistoryLimit int

	Sim parking.Config
}

// Load reads the configuration from the environment, falling back to the
// simulation defaults for anything unset. A set but unparseable variable
// is a fatal configuration error.
func Load() (*Config, error) {
	p := &envParser{}

	sim := parking.DefaultConfig()
	sim.Levels = p.getInt("GARAGE_LEVELS", sim.Levels)
	sim.SpacesPerLevel = p.getInt("GARAGE_SPACES_PER_LEVEL", sim.SpacesPerLevel)
	sim.MotorcycleSpacesPerLevel = p.getInt("GARAGE_MOTORCYCLE_SPACES", sim.MotorcycleSpacesPerLevel)
	sim.TruckSpacesPerLevel = p.getInt("GARAGE_TRUCK_SPACES", sim.TruckSpacesPerLevel)

	sim.HourlyRates[parking.ClassCar] = p.getFloat("FEE_RATE_CAR", sim.HourlyRates[parking.ClassCar])
	sim.HourlyRates[parking.ClassSUV] = p.getFloat("FEE_RATE_SUV", sim.HourlyRates[parking.ClassSUV])
	sim.HourlyRates[parking.ClassTruck] = p.getFloat("FEE_RATE_TRUCK", sim.HourlyRates[parking.ClassTruck])
	sim.HourlyRates[parking.ClassMotorcycle] = p.getFloat("FEE_RATE_MOTORCYCLE", sim.HourlyRates[parking.ClassMotorcycle])

	sim.BaseEntryRate = p.getFloat("SIM_ENTRY_RATE", sim.BaseEntryRate)
	sim.BaseExitRate = p.getFloat("SIM_EXIT_RATE", sim.BaseExitRate)
	sim.PeakMultiplier = p.getFloat("SIM_PEAK_MULTIPLIER", sim.PeakMultiplier)
	sim.PaymentSuccessRate = p.getFloat("SIM_PAYMENT_SUCCESS_RATE", sim.PaymentSuccessRate)
	sim.TickInterval = p.getDuration("SIM_TICK_INTERVAL", sim.TickInterval)
	sim.Seed = p.getInt64("SIM_SEED", sim.Seed)

	if raw := os.Getenv("SIM_PEAK_WINDOWS"); raw != "" {
		windows, err := parsePeakWindows(raw)
		if err != nil {
			return nil, fmt.Errorf("SIM_PEAK_WINDOWS: %w", err)
		}
		sim.PeakWindows = windows
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		OTelServiceName:   getEnv("OTEL_SERVICE_NAME", "parking-tower"),
		OTelEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		EventHistoryLimit: p.getInt("EVENT_HISTORY_LIMIT", 1000),
		Sim:               sim,
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.EventHistoryLimit <= 0 {
		return fmt.Errorf("EVENT_HISTORY_LIMIT must be positive, got %d", c.EventHistoryLimit)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// parsePeakWindows parses a window list like "7-9,17-19" into inclusive
// hour ranges.
func parsePeakWindows(raw string) ([]parking.PeakWindow, error) {
	var windows []parking.PeakWindow
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("malformed window %q, want start-end", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("malformed window %q: %w", part, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed window %q: %w", part, err)
		}
		windows = append(windows, parking.PeakWindow{StartHour: start, EndHour: end})
	}
	return windows, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envParser reads typed environment variables and keeps the first parse
// failure, so a malformed value fails Load instead of silently running
// on a default.
type envParser struct {
	err error
}

func (p *envParser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (p *envParser) getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return parsed
}

func (p *envParser) getInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return parsed
}

func (p *envParser) getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return parsed
}

func (p *envParser) getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return parsed
}
