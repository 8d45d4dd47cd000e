package raster

import (
	"image/color"

	"github.com/arksecurity/camfov"
	"github.com/go-gl/mathgl/mgl32"
)

// Style controls how footprints are drawn.
type Style struct {
	Color         color.NRGBA
	FillOpacity   float32
	HiddenColor   color.NRGBA
	LineWidth     float32
	MarkerRadius  float32
	Labels        bool
	ShowHiddenFOV bool
}

// StyleFrom derives a snapshot style from the overlay style config.
func StyleFrom(s camfov.StyleConfig) Style {
	r, g, b := s.Color.RGB()
	return Style{
		Color:        color.NRGBA{R: r, G: g, B: b, A: 0xff},
		FillOpacity:  s.FootprintOpacity,
		HiddenColor:  color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xc0},
		LineWidth:    1.5,
		MarkerRadius: 4,
		Labels:       true,
	}
}

func withAlpha(c color.NRGBA, a float32) color.NRGBA {
	c.A = uint8(mgl32.Clamp(a, 0, 1) * 255)
	return c
}

// DrawFootprint draws the floor footprint of a visible rig, its far-plane
// outline and the wireframe tubes seen from above. Hidden rigs get a grey marker only, unless
// ShowHiddenFOV is set.
func (c *Canvas) DrawFootprint(fp camfov.Footprint, st Style) {
	col := st.Color
	if !fp.Visible {
		col = st.HiddenColor
	}
	if fp.Visible || st.ShowHiddenFOV {
		if len(fp.Triangles) > 0 {
			c.FillTriangles(fp.Triangles, withAlpha(col, st.FillOpacity))
		}
		edge := withAlpha(col, 0.6)
		c.Polyline(fp.FarOutline[:], true, st.LineWidth, edge)
		for _, tube := range fp.Edges {
			c.FillTriangles(tube, edge)
		}
	}
	c.Marker(fp.Position, st.MarkerRadius, col)
	if st.Labels && fp.Label != "" {
		c.Label(fp.Position, fp.Label, col)
	}
}

// DrawFootprints draws every footprint, hidden ones first.
func (c *Canvas) DrawFootprints(fps []camfov.Footprint, st Style) {
	for _, visible := range []bool{false, true} {
		for _, fp := range fps {
			if fp.Visible == visible {
				c.DrawFootprint(fp, st)
			}
		}
	}
}
