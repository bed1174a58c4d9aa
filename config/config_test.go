package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-tower/internal/parking"
)

// configKeys lists every variable Load reads, so tests can isolate
// themselves from whatever the surrounding process exports.
var configKeys = []string{
	"PORT", "ENVIRONMENT", "OTEL_SERVICE_NAME", "OTEL_EXPORTER_OTLP_ENDPOINT",
	"EVENT_HISTORY_LIMIT",
	"GARAGE_LEVELS", "GARAGE_SPACES_PER_LEVEL", "GARAGE_MOTORCYCLE_SPACES", "GARAGE_TRUCK_SPACES",
	"FEE_RATE_CAR", "FEE_RATE_SUV", "FEE_RATE_TRUCK", "FEE_RATE_MOTORCYCLE",
	"SIM_ENTRY_RATE", "SIM_EXIT_RATE", "SIM_PEAK_MULTIPLIER", "SIM_PAYMENT_SUCCESS_RATE",
	"SIM_TICK_INTERVAL", "SIM_SEED", "SIM_PEAK_WINDOWS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "parking-tower", cfg.OTelServiceName)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)
	assert.Equal(t, 1000, cfg.EventHistoryLimit)

	assert.Equal(t, 15, cfg.Sim.Levels)
	assert.Equal(t, 20, cfg.Sim.SpacesPerLevel)
	assert.Equal(t, 2, cfg.Sim.MotorcycleSpacesPerLevel)
	assert.Equal(t, 2, cfg.Sim.TruckSpacesPerLevel)
	assert.Equal(t, 3.0, cfg.Sim.HourlyRates[parking.ClassCar])
	assert.Equal(t, 4.0, cfg.Sim.HourlyRates[parking.ClassSUV])
	assert.Equal(t, 6.0, cfg.Sim.HourlyRates[parking.ClassTruck])
	assert.Equal(t, 2.0, cfg.Sim.HourlyRates[parking.ClassMotorcycle])
	assert.Equal(t, 0.95, cfg.Sim.PaymentSuccessRate)
	assert.Equal(t, 3.0, cfg.Sim.PeakMultiplier)
	assert.Equal(t, time.Second, cfg.Sim.TickInterval)
	assert.Equal(t, []parking.PeakWindow{
		{StartHour: 7, EndHour: 9},
		{StartHour: 17, EndHour: 19},
	}, cfg.Sim.PeakWindows)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("GARAGE_LEVELS", "3")
	t.Setenv("GARAGE_SPACES_PER_LEVEL", "5")
	t.Setenv("FEE_RATE_CAR", "5.5")
	t.Setenv("SIM_ENTRY_RATE", "240")
	t.Setenv("SIM_PAYMENT_SUCCESS_RATE", "0.8")
	t.Setenv("SIM_TICK_INTERVAL", "250ms")
	t.Setenv("SIM_SEED", "99")
	t.Setenv("SIM_PEAK_WINDOWS", "6-8, 16-18")
	t.Setenv("EVENT_HISTORY_LIMIT", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 3, cfg.Sim.Levels)
	assert.Equal(t, 5, cfg.Sim.SpacesPerLevel)
	assert.Equal(t, 5.5, cfg.Sim.HourlyRates[parking.ClassCar])
	assert.Equal(t, 240.0, cfg.Sim.BaseEntryRate)
	assert.Equal(t, 0.8, cfg.Sim.PaymentSuccessRate)
	assert.Equal(t, 250*time.Millisecond, cfg.Sim.TickInterval)
	assert.Equal(t, int64(99), cfg.Sim.Seed)
	assert.Equal(t, []parking.PeakWindow{
		{StartHour: 6, EndHour: 8},
		{StartHour: 16, EndHour: 18},
	}, cfg.Sim.PeakWindows)
	assert.Equal(t, 50, cfg.EventHistoryLimit)
}

func TestLoadMalformedPeakWindows(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIM_PEAK_WINDOWS", "7..9")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIM_PEAK_WINDOWS")
}

func TestLoadMalformedValues(t *testing.T) {
	cases := map[string]string{
		"GARAGE_LEVELS":            "plenty",
		"FEE_RATE_CAR":             "cheap",
		"SIM_ENTRY_RATE":           "abc",
		"SIM_TICK_INTERVAL":        "soon",
		"SIM_SEED":                 "4.5",
		"SIM_PAYMENT_SUCCESS_RATE": "always",
		"EVENT_HISTORY_LIMIT":      "lots",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadInvalidEventLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVENT_HISTORY_LIMIT", "-5")

	_, err := Load()
	require.Error(t, err)
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Environment: "development"}
	assert.True(t, cfg.IsDevelopment())

	cfg.Environment = "production"
	assert.False(t, cfg.IsDevelopment())
}
