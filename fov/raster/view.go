// Package raster draws top-down snapshots of camera footprints: world xz
// maps to image xy, with +z pointing down the image.
package raster

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// View maps the world rectangle [Min, Max] on the xz plane to a
// Width x Height image.
type View struct {
	Min, Max      mgl32.Vec2
	Width, Height int
}

// FitView returns a view of the given world bounds padded by margin world
// units. Height follows from width so that world units stay square.
func FitView(lo, hi mgl32.Vec2, width int, margin float32) (View, error) {
	if width <= 0 {
		return View{}, fmt.Errorf("raster: width must be positive, got %d", width)
	}
	lo = lo.Sub(mgl32.Vec2{margin, margin})
	hi = hi.Add(mgl32.Vec2{margin, margin})
	span := hi.Sub(lo)
	if span.X() <= 0 || span.Y() <= 0 {
		return View{}, fmt.Errorf("raster: empty bounds %v..%v", lo, hi)
	}
	height := int(math.Ceil(float64(float32(width) * span.Y() / span.X())))
	return View{Min: lo, Max: hi, Width: width, Height: max(height, 1)}, nil
}

// Scale is the number of pixels per world unit along x.
func (v View) Scale() float32 {
	return float32(v.Width) / (v.Max.X() - v.Min.X())
}

// Project maps a world point to pixel coordinates. Height is ignored.
func (v View) Project(p mgl32.Vec3) (x, y float32) {
	sx := float32(v.Width) / (v.Max.X() - v.Min.X())
	sy := float32(v.Height) / (v.Max.Y() - v.Min.Y())
	return (p.X() - v.Min.X()) * sx, (p.Z() - v.Min.Y()) * sy
}

// Unproject maps pixel coordinates back to the world xz plane at height y.
func (v View) Unproject(px, py, y float32) mgl32.Vec3 {
	sx := (v.Max.X() - v.Min.X()) / float32(v.Width)
	sy := (v.Max.Y() - v.Min.Y()) / float32(v.Height)
	return mgl32.Vec3{v.Min.X() + px*sx, y, v.Min.Y() + py*sy}
}
