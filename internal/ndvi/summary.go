package ndvi

// Summary is everything the crop-health card needs.
type Summary struct {
	Latest *float64
	Change *float64
	Level  Level
	Trend  Trend
	Points []Point
}

// Summarize classifies latest and change and builds the default sparkline.
// When change is unknown but history holds two or more valid samples, the
// change is taken as the difference between the last two.
func Summarize(latest, change *float64, history []Sample) Summary {
	if !valid(change) {
		change = derivedChange(history)
	}
	return Summary{
		Latest: latest,
		Change: change,
		Level:  ClassifyLevel(latest),
		Trend:  ClassifyTrend(change),
		Points: BuildSparkline(history, latest, DefaultMaxPoints),
	}
}

func derivedChange(history []Sample) *float64 {
	var last, prev *float64
	for _, s := range history {
		if valid(s.NDVI) {
			prev, last = last, s.NDVI
		}
	}
	if last == nil || prev == nil {
		return nil
	}
	d := *last - *prev
	return &d
}
