package models

// WorkoutMetrics holds the before/after measurements of one session.
type WorkoutMetrics struct {
	WeightBefore    float64 `json:"weight_before"`
	WeightAfter     float64 `json:"weight_after"`
	HeartRateBefore int     `json:"heart_rate_before"`
	HeartRateAfter  int     `json:"heart_rate_after"`
}

// WorkoutRecord is one completed session. Records are immutable once written;
// the collection is only ever replaced as a whole, newest first.
type WorkoutRecord struct {
	ID       string         `json:"id"`
	Date     string         `json:"date"`
	Duration int            `json:"duration"`
	Metrics  WorkoutMetrics `json:"metrics"`
	Notes    string         `json:"notes"`
	Media    []string       `json:"media,omitempty"`
}

// WorkoutsDoc is the document stored under workouts:<userId>.
type WorkoutsDoc struct {
	Workouts []WorkoutRecord `json:"workouts"`
}
