// Package ndvi turns raw NDVI readings into the crop-health card shown on
// the dashboard: a qualitative level, a trend label, and a sparkline
// normalised onto a fixed logical canvas.
//
// All functions are pure and defined for every input, including nil
// readings and empty histories. Nothing here reads the clock.
package ndvi
