package models

import "strings"

// Priority labels used by advisories and recommendations.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

type Forecast struct {
	Day      int      `json:"day"`
	Temp     *float64 `json:"temp"`
	Humidity *float64 `json:"humidity"`
	Rainfall *float64 `json:"rainfall"`
}

type Weather struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Rainfall    *float64 `json:"rainfall"`
	WindSpeed   *float64 `json:"wind_speed"`
	Location    string   `json:"location,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Forecast    *struct {
		Next3Days []Forecast `json:"next_3_days"`
	} `json:"forecast,omitempty"`
}

type MarketPrice struct {
	Price         *float64 `json:"price"`
	Unit          string   `json:"unit"`
	ChangePercent *float64 `json:"change_percent"`
	Trend         string   `json:"trend"`
	Mandi         string   `json:"mandi,omitempty"`
	LastUpdated   string   `json:"last_updated,omitempty"`
}

type Alert struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Level          string   `json:"level"`
	Confidence     *float64 `json:"confidence"`
	Type           string   `json:"type"`
	Crop           string   `json:"crop,omitempty"`
	Description    string   `json:"description,omitempty"`
	Timestamp      string   `json:"timestamp,omitempty"`
	ActionRequired bool     `json:"action_required,omitempty"`
}

// NDVISample is one day of the NDVI history.
type NDVISample struct {
	Date string   `json:"date"`
	NDVI *float64 `json:"ndvi"`
}

type CropHealth struct {
	NDVI         *float64     `json:"ndvi"`
	NDVIChange   *float64     `json:"ndvi_change"`
	SoilMoisture *float64     `json:"soil_moisture"`
	CropStage    string       `json:"crop_stage"`
	HealthScore  *float64     `json:"health_score"`
	LastUpdated  string       `json:"last_updated,omitempty"`
	History      []NDVISample `json:"ndvi_history,omitempty"`
}

type DashboardSummary struct {
	TotalAlerts       int `json:"total_alerts"`
	HighPriorityCount int `json:"high_priority_count"`
	CropsMonitored    int `json:"crops_monitored"`
}

// Dashboard is the payload of GET /fusion/dashboard.
type Dashboard struct {
	Weather     Weather                `json:"weather"`
	Market      map[string]MarketPrice `json:"market"`
	Alerts      []Alert                `json:"alerts"`
	CropHealth  map[string]CropHealth  `json:"crop_health"`
	Summary     *DashboardSummary      `json:"summary,omitempty"`
	NDVIHistory []NDVISample           `json:"ndvi_history,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
}

// Normalize fills maps and derives the summary when the backend omitted it.
func (d *Dashboard) Normalize() {
	if d.Market == nil {
		d.Market = map[string]MarketPrice{}
	}
	if d.CropHealth == nil {
		d.CropHealth = map[string]CropHealth{}
	}
	if d.Summary == nil {
		s := DashboardSummary{TotalAlerts: len(d.Alerts), CropsMonitored: len(d.CropHealth)}
		for _, a := range d.Alerts {
			if strings.EqualFold(a.Level, "high") {
				s.HighPriorityCount++
			}
		}
		d.Summary = &s
	}
	if d.Timestamp == "" {
		d.Timestamp = d.Weather.Timestamp
	}
}

// Health returns the crop-health entry for crop (case-insensitive). The
// entry's history falls back to the dashboard-wide NDVI history.
func (d *Dashboard) Health(crop string) (CropHealth, bool) {
	h, ok := d.CropHealth[crop]
	if !ok {
		for k, v := range d.CropHealth {
			if strings.EqualFold(k, crop) {
				h, ok = v, true
				break
			}
		}
	}
	if len(h.History) == 0 {
		h.History = d.NDVIHistory
	}
	return h, ok
}

// Price returns the market entry for crop (case-insensitive).
func (d *Dashboard) Price(crop string) (MarketPrice, bool) {
	if p, ok := d.Market[crop]; ok {
		return p, true
	}
	for k, v := range d.Market {
		if strings.EqualFold(k, crop) {
			return v, true
		}
	}
	return MarketPrice{}, false
}

type Recommendation struct {
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	Priority string `json:"priority"`
	Timeline string `json:"timeline"`
}

type RuleGroup struct {
	Fired []string `json:"fired"`
	Score *float64 `json:"score"`
}

type RuleBreakdown struct {
	Pest       RuleGroup `json:"pest"`
	Irrigation RuleGroup `json:"irrigation"`
	Market     RuleGroup `json:"market"`
}

type DataSources struct {
	Weather   string `json:"weather"`
	Satellite string `json:"satellite"`
	Market    string `json:"market"`
}

// Advisory is the payload of GET /fusion/advisory/{crop}.
type Advisory struct {
	Crop            string           `json:"crop"`
	Analysis        string           `json:"analysis"`
	Priority        string           `json:"priority"`
	Severity        string           `json:"severity"`
	RuleScore       *float64         `json:"rule_score"`
	FiredRules      []string         `json:"fired_rules"`
	Recommendations []Recommendation `json:"recommendations"`
	RuleBreakdown   *RuleBreakdown   `json:"rule_breakdown,omitempty"`
	DataSources     *DataSources     `json:"data_sources,omitempty"`
	LastUpdated     string           `json:"last_updated,omitempty"`
}

// Normalize applies the advisory defaults: priority falls back to severity
// and then to Low; recommendation priorities default to low.
func (a *Advisory) Normalize() {
	if a.Priority == "" {
		a.Priority = a.Severity
	}
	if a.Priority == "" {
		a.Priority = PriorityLow
	}
	if a.Severity == "" {
		a.Severity = a.Priority
	}
	for i := range a.Recommendations {
		if a.Recommendations[i].Priority == "" {
			a.Recommendations[i].Priority = strings.ToLower(PriorityLow)
		}
	}
	if a.Analysis == "" {
		a.Analysis = "No analysis available."
	}
}
