package parking

import "time"

type Statistics struct {
	TotalEntries   int64   `json:"total_entries"`
	TotalExits     int64   `json:"total_exits"`
	TotalRevenue   float64 `json:"total_revenue"`
	AvgStayMinutes float64 `json:"avg_stay_minutes"`
	OccupancyRate  float64 `json:"occupancy_rate"`
}

type SystemStatus struct {
	Timestamp       time.Time   `json:"timestamp"`
	State           EngineState `json:"state"`
	TotalSpaces     int         `json:"total_spaces"`
	OccupiedSpaces  int         `json:"occupied_spaces"`
	AvailableSpaces int         `json:"available_spaces"`
	QueueLength     int         `json:"queue_length"`
	IsPeakHour      bool        `json:"is_peak_hour"`
	EntryRate       float64     `json:"entry_rate"`
	ExitRate        float64     `json:"exit_rate"`
	Statistics      Statistics  `json:"statistics"`
}
