package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/heatsim/internal/sim"
	"github.com/san-kum/heatsim/internal/viz"
)

const (
	background = "#0a0a0a"
	margin     = 0.05
)

// EnergySVG renders the energy series as a single polyline, time on the
// horizontal axis. Non-finite samples break the line.
func EnergySVG(w io.Writer, samples []sim.Sample, width, height int, stroke string) error {
	if len(samples) == 0 {
		return fmt.Errorf("export: no samples")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export: invalid size %dx%d", width, height)
	}

	minX, maxX := samples[0].Time, samples[len(samples)-1].Time
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		if math.IsNaN(s.Energy) || math.IsInf(s.Energy, 0) {
			continue
		}
		minY = min(minY, s.Energy)
		maxY = max(maxY, s.Energy)
	}
	if math.IsInf(minY, 1) {
		return fmt.Errorf("export: no finite samples")
	}

	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, background, stroke)

	move := true
	for _, s := range samples {
		if math.IsNaN(s.Energy) || math.IsInf(s.Energy, 0) {
			move = true
			continue
		}
		x := (s.Time - minX) / (maxX - minX) * float64(width)
		y := float64(height) - (s.Energy-minY)/(maxY-minY)*float64(height)
		cmd := "L"
		if move {
			cmd = "M"
			move = false
		}
		fmt.Fprintf(&sb, "%s%.1f,%.1f ", cmd, x, y)
	}

	sb.WriteString("\"/>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// CanvasSVG converts a Braille canvas into one circle per lit dot.
func CanvasSVG(w io.Writer, c *viz.Canvas, scale float64, fill string) error {
	if c == nil {
		return fmt.Errorf("export: nil canvas")
	}

	width := float64(c.DotsWide()) * scale
	height := float64(c.DotsHigh()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, fill)

	r := scale * 0.4
	for y := 0; y < c.DotsHigh(); y++ {
		for x := 0; x < c.DotsWide(); x++ {
			if !c.Lit(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span*margin, hi + span*margin
}
