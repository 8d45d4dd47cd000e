package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Canvas is an RGBA image with a world view and a label face.
type Canvas struct {
	img  *image.RGBA
	view View
	face font.Face
	rast *vector.Rasterizer
}

// NewCanvas allocates a canvas for v cleared to bg.
func NewCanvas(v View, bg color.Color) (*Canvas, error) {
	if v.Width <= 0 || v.Height <= 0 {
		return nil, fmt.Errorf("raster: bad canvas size %dx%d", v.Width, v.Height)
	}
	face, err := labelFace(12)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Canvas{
		img:  img,
		view: v,
		face: face,
		rast: vector.NewRasterizer(v.Width, v.Height),
	}, nil
}

func labelFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("raster: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("raster: font face: %w", err)
	}
	return face, nil
}

func (c *Canvas) Image() *image.RGBA { return c.img }
func (c *Canvas) View() View         { return c.view }

// DrawBackground scales img over the whole canvas.
func (c *Canvas) DrawBackground(img image.Image) {
	draw.CatmullRom.Scale(c.img, c.img.Bounds(), img, img.Bounds(), draw.Over, nil)
}

// FillTriangles fills a flat world-space triangle list as one shape so that
// shared edges are not blended twice.
func (c *Canvas) FillTriangles(tris []mgl32.Vec3, col color.Color) {
	if len(tris) < 3 {
		return
	}
	c.rast.Reset(c.view.Width, c.view.Height)
	for i := 0; i+2 < len(tris); i += 3 {
		ax, ay := c.view.Project(tris[i])
		bx, by := c.view.Project(tris[i+1])
		cx, cy := c.view.Project(tris[i+2])
		// Overlapping triangles of opposite winding would cancel out.
		if (bx-ax)*(cy-ay)-(by-ay)*(cx-ax) < 0 {
			bx, by, cx, cy = cx, cy, bx, by
		}
		c.rast.MoveTo(ax, ay)
		c.rast.LineTo(bx, by)
		c.rast.LineTo(cx, cy)
		c.rast.ClosePath()
	}
	c.rast.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

// Polyline strokes the world points with a line width in pixels.
func (c *Canvas) Polyline(pts []mgl32.Vec3, closed bool, width float32, col color.Color) {
	if len(pts) < 2 {
		return
	}
	c.rast.Reset(c.view.Width, c.view.Height)
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	for i := 0; i < n; i++ {
		ax, ay := c.view.Project(pts[i])
		bx, by := c.view.Project(pts[(i+1)%len(pts)])
		c.segment(mgl32.Vec2{ax, ay}, mgl32.Vec2{bx, by}, width/2)
	}
	c.rast.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *Canvas) segment(a, b mgl32.Vec2, half float32) {
	d := b.Sub(a)
	if d.Len() < 1e-4 {
		return
	}
	n := mgl32.Vec2{-d.Y(), d.X()}.Normalize().Mul(half)
	// The perpendicular keeps every quad the same winding, so joins union.
	pts := [4]mgl32.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
	c.rast.MoveTo(pts[0].X(), pts[0].Y())
	for _, p := range pts[1:] {
		c.rast.LineTo(p.X(), p.Y())
	}
	c.rast.ClosePath()
}

// Rect strokes the outline of a world-space rectangle on the xz plane.
func (c *Canvas) Rect(lo, hi mgl32.Vec2, width float32, col color.Color) {
	c.Polyline([]mgl32.Vec3{
		{lo.X(), 0, lo.Y()},
		{hi.X(), 0, lo.Y()},
		{hi.X(), 0, hi.Y()},
		{lo.X(), 0, hi.Y()},
	}, true, width, col)
}

// Marker fills a small diamond of the given pixel radius at p.
func (c *Canvas) Marker(p mgl32.Vec3, radius float32, col color.Color) {
	x, y := c.view.Project(p)
	c.rast.Reset(c.view.Width, c.view.Height)
	c.rast.MoveTo(x, y-radius)
	c.rast.LineTo(x+radius, y)
	c.rast.LineTo(x, y+radius)
	c.rast.LineTo(x-radius, y)
	c.rast.ClosePath()
	c.rast.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

// Label writes text with its baseline just below and right of p.
func (c *Canvas) Label(p mgl32.Vec3, text string, col color.Color) {
	x, y := c.view.Project(p)
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(int(x)+6, int(y)+c.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// TextWidth returns the advance of text in pixels.
func (c *Canvas) TextWidth(text string) int {
	return font.MeasureString(c.face, text).Ceil()
}
