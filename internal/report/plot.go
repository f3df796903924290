package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/arcfix-nav/driftfilter/internal/stats"
)

// markerColors assigns a fixed color per stats.MarkerKind so a report is
// visually consistent across runs, mirroring the teacher's generateColors
// palette in internal/lidar/monitor/gridplotter.go (there generated
// per-azimuth-line; here fixed per marker kind since the kind set is small
// and known).
var markerColors = map[stats.MarkerKind]color.Color{
	stats.KindStaticDrift: color.RGBA{R: 0xff, G: 0x52, B: 0x52, A: 0xff},
	stats.KindMovingDrift: color.RGBA{R: 0xff, G: 0x98, B: 0x00, A: 0xff},
	stats.KindTunnel:      color.RGBA{R: 0x7c, G: 0x4d, B: 0xff, A: 0xff},
	stats.KindSpeed:       color.RGBA{R: 0x29, G: 0xb6, B: 0xf6, A: 0xff},
	stats.KindRebuild:     color.RGBA{R: 0xff, G: 0xee, B: 0x58, A: 0xff},
}

// RenderStaticPlot writes a PNG scatter of accepted fixes (green), rejected
// fixes (dimmed gray), and markers color-coded by Marker.Kind, to path.
// Grounded on internal/lidar/monitor/gridplotter.go's generateRingPlot:
// one plot.New(), one or more plotter series added and legended, one Save
// call at a fixed 14x10-inch canvas.
func RenderStaticPlot(path, title string, result stats.ProcessingResult) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "lng"
	p.Y.Label.Text = "lat"

	accepted := make(map[int64]bool, len(result.ProcessedPoints))
	for _, f := range result.ProcessedPoints {
		accepted[f.TimeMs] = true
	}

	var acceptedPts, rejectedPts plotter.XYs
	for _, f := range result.OriginalPoints {
		xy := plotter.XY{X: f.Lng, Y: f.Lat}
		if accepted[f.TimeMs] {
			acceptedPts = append(acceptedPts, xy)
		} else {
			rejectedPts = append(rejectedPts, xy)
		}
	}

	if len(acceptedPts) > 0 {
		s, err := plotter.NewScatter(acceptedPts)
		if err != nil {
			return fmt.Errorf("report: accepted scatter: %w", err)
		}
		s.GlyphStyle.Color = color.RGBA{R: 0x35, G: 0xb7, B: 0x79, A: 0xff}
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add("accepted", s)
	}

	if len(rejectedPts) > 0 {
		s, err := plotter.NewScatter(rejectedPts)
		if err != nil {
			return fmt.Errorf("report: rejected scatter: %w", err)
		}
		s.GlyphStyle.Color = color.Gray{Y: 0x99}
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add("rejected", s)
	}

	byKind := make(map[stats.MarkerKind]plotter.XYs)
	for _, m := range result.Markers {
		byKind[m.Kind] = append(byKind[m.Kind], plotter.XY{X: m.Position.Lng, Y: m.Position.Lat})
	}
	for kind, pts := range byKind {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("report: marker scatter (%s): %w", kind, err)
		}
		if c, ok := markerColors[kind]; ok {
			s.GlyphStyle.Color = c
		}
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add(string(kind), s)
	}

	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(14*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save plot: %w", err)
	}
	return nil
}
