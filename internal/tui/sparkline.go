package tui

import (
	"fmt"
	"strings"

	"github.com/sentinelmon/sentinel/internal/fetch"
)

// sparkBlocks are the eight vertical block glyphs, lowest to highest.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders points as a single-line block chart of at most width
// cells. When there are more points than cells the series is downsampled by
// taking the last value of each bucket.
func Sparkline(points []fetch.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	values := make([]float64, 0, width)
	if len(points) <= width {
		for _, p := range points {
			values = append(values, p.Value)
		}
	} else {
		for i := range width {
			// last point of each bucket, so the final cell is the
			// latest observation
			idx := (i+1)*len(points)/width - 1
			values = append(values, points[idx].Value)
		}
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var sb strings.Builder
	span := hi - lo
	for _, v := range values {
		i := 0
		if span > 0 {
			i = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		sb.WriteRune(sparkBlocks[i])
	}
	return sb.String()
}

// RenderSeriesPanel renders a titled sparkline with range labels, or an
// unavailable note when the series carries no points.
func RenderSeriesPanel(title string, points []fetch.Point, width int) string {
	header := HeaderStyle.Render(title)
	if len(points) == 0 {
		return header + "\n" + SubtleStyle.Render("unavailable")
	}

	lo, hi := points[0].Value, points[0].Value
	for _, p := range points {
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
	}

	line := Sparkline(points, width)
	last := points[len(points)-1]
	caption := SubtleStyle.Render(fmt.Sprintf("low %.2f  high %.2f  last %.2f (%s)",
		lo, hi, last.Value, last.Time.Format("2006-01-02")))
	return header + "\n" + line + "\n" + caption
}
