package ndvi

import "math"

const (
	// GoodThreshold is the reading above which vegetation is healthy.
	GoodThreshold = 0.6
	// ModerateThreshold is the lowest reading still considered moderate.
	ModerateThreshold = 0.4
	// TrendThreshold is the noise band around zero change treated as steady.
	TrendThreshold = 0.02
)

// Level is the qualitative health of the latest reading.
type Level int

const (
	LevelUnknown Level = iota
	LevelGood
	LevelModerate
	LevelPoor
)

func (l Level) String() string {
	switch l {
	case LevelGood:
		return "Good"
	case LevelModerate:
		return "Moderate"
	case LevelPoor:
		return "Poor"
	default:
		return "Unknown"
	}
}

// Trend is the direction of the most recent change.
type Trend int

const (
	TrendUnknown Trend = iota
	TrendRising
	TrendSteady
	TrendDropping
)

func (t Trend) String() string {
	switch t {
	case TrendRising:
		return "Rising"
	case TrendSteady:
		return "Steady"
	case TrendDropping:
		return "Dropping"
	default:
		return "Unknown"
	}
}

// ClassifyLevel maps the latest reading to a Level. Thresholds are inclusive
// on both ends of the moderate band.
func ClassifyLevel(latest *float64) Level {
	if !valid(latest) {
		return LevelUnknown
	}
	v := *latest
	switch {
	case v > GoodThreshold:
		return LevelGood
	case v >= ModerateThreshold:
		return LevelModerate
	default:
		return LevelPoor
	}
}

// ClassifyTrend maps a change in NDVI to a Trend. Changes within
// ±TrendThreshold are Steady.
func ClassifyTrend(change *float64) Trend {
	if !valid(change) {
		return TrendUnknown
	}
	c := *change
	switch {
	case c > TrendThreshold:
		return TrendRising
	case c < -TrendThreshold:
		return TrendDropping
	default:
		return TrendSteady
	}
}

func valid(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
