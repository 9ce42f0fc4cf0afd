package ndvi

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxPoints bounds the sparkline to the most recent week.
	DefaultMaxPoints = 7
	// Epsilon replaces a zero value range so flat series still render.
	Epsilon = 1e-6
	// Width and Height describe the logical canvas points are mapped onto.
	Width  = 100.0
	Height = 30.0
)

// Sample is one reading of an NDVI series. NDVI is nil when the backend had
// no usable value for that day.
type Sample struct {
	Timestamp string
	NDVI      *float64
}

// Point is a sparkline vertex on the logical canvas. The origin is the top
// left corner, so larger readings have smaller Y.
type Point struct {
	X float64
	Y float64
}

// BuildSparkline maps the last maxPoints valid samples of history onto the
// canvas, oldest first. maxPoints <= 0 means DefaultMaxPoints.
//
// With no valid history, latest (if known) is drawn as a flat line; a single
// sample is duplicated. Nil means there is nothing to draw.
func BuildSparkline(history []Sample, latest *float64, maxPoints int) []Point {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	values := make([]float64, 0, len(history))
	for _, s := range history {
		if valid(s.NDVI) {
			values = append(values, *s.NDVI)
		}
	}
	if len(values) > maxPoints {
		values = values[len(values)-maxPoints:]
	}

	switch len(values) {
	case 0:
		if !valid(latest) {
			return nil
		}
		values = []float64{*latest, *latest}
	case 1:
		values = append(values, values[0])
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = Epsilon
	}

	step := Width / float64(len(values)-1)
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{
			X: float64(i) * step,
			Y: Height - (v-lo)/span*Height,
		}
	}
	return points
}

// Path renders points as an SVG path ("M x y L x y ..."). Nil yields "".
func Path(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		fmt.Fprintf(&b, "%.2f %.2f", p.X, p.Y)
	}
	return b.String()
}

var blocks = []rune("▁▂▃▄▅▆▇█")

// Bar renders points as a row of unicode block characters, one per point.
func Bar(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	top := len(blocks) - 1
	out := make([]rune, len(points))
	for i, p := range points {
		idx := int((Height-p.Y)/Height*float64(top) + 0.5)
		idx = max(0, min(top, idx))
		out[i] = blocks[idx]
	}
	return string(out)
}
