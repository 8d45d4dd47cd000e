// Package frustum builds truncated-pyramid view volumes from camera optics.
//
// Geometry lives in the tilt frame of a rig, looking down -Z. Inputs are clamped,
// never rejected.
package frustum

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultAspect = float32(16.0 / 9.0)

	minNear      = float32(0.01)
	minDepthGap  = float32(0.01)
	minAperture  = float32(0.05)
	maxAperture  = float32(1.0)
	edgeEpsilon  = float32(1e-6)
	defaultColor = uint32(0x00ff00)
)

type Style struct {
	Color          uint32
	FillOpacity    float32
	EdgeRadius     float32
	BaseEdgeRadius float32
}

func DefaultStyle() Style {
	return Style{
		Color:          defaultColor,
		FillOpacity:    0.08,
		EdgeRadius:     0.016,
		BaseEdgeRadius: 0.010,
	}
}

type Params struct {
	HFovDeg       float32
	Aspect        float32
	Near          float32
	Far           float32
	ApertureScale float32
	Style         Style
}

// Segment is an edge of the frustum wireframe, drawn as a tube of Radius.
type Segment struct {
	A, B   mgl32.Vec3
	Radius float32
}

type Geometry struct {
	Near  [4]mgl32.Vec3
	Far   [4]mgl32.Vec3
	Edges [12]Segment
	// Faces holds 10 triangles (4 side quads + near cap) as a flat vertex list.
	Faces []mgl32.Vec3
	Style Style

	NearDist float32
	FarDist  float32

	disposed bool
}

// Dims returns the half extents of the view rectangle at dist.
func Dims(hfovDeg, aspect, dist float32) (halfW, halfH float32) {
	if aspect <= 0 {
		aspect = DefaultAspect
	}
	h := float64(mgl32.DegToRad(hfovDeg))
	v := 2 * math.Atan(math.Tan(h/2)/float64(aspect))
	halfW = float32(math.Tan(h/2) * float64(dist))
	halfH = float32(math.Tan(v/2) * float64(dist))
	return halfW, halfH
}

// VerticalFovDeg derives the vertical field of view from the horizontal one.
func VerticalFovDeg(hfovDeg, aspect float32) float32 {
	if aspect <= 0 {
		aspect = DefaultAspect
	}
	h := float64(mgl32.DegToRad(hfovDeg))
	return mgl32.RadToDeg(float32(2 * math.Atan(math.Tan(h/2)/float64(aspect))))
}

// Clamp normalizes near, far and aperture the way Build does.
func Clamp(p Params) Params {
	if p.Aspect <= 0 {
		p.Aspect = DefaultAspect
	}
	p.Near = max(minNear, p.Near)
	p.Far = max(p.Near+minDepthGap, p.Far)
	if p.ApertureScale == 0 {
		p.ApertureScale = 1
	}
	p.ApertureScale = mgl32.Clamp(p.ApertureScale, minAperture, maxAperture)
	if p.Style == (Style{}) {
		p.Style = DefaultStyle()
	}
	return p
}

func Build(p Params) *Geometry {
	p = Clamp(p)

	nHalfW, nHalfH := Dims(p.HFovDeg, p.Aspect, p.Near)
	fHalfW, fHalfH := Dims(p.HFovDeg, p.Aspect, p.Far)
	nHalfW *= p.ApertureScale
	nHalfH *= p.ApertureScale

	g := &Geometry{Style: p.Style, NearDist: p.Near, FarDist: p.Far}
	g.Near = [4]mgl32.Vec3{
		{-nHalfW, -nHalfH, -p.Near},
		{nHalfW, -nHalfH, -p.Near},
		{nHalfW, nHalfH, -p.Near},
		{-nHalfW, nHalfH, -p.Near},
	}
	g.Far = [4]mgl32.Vec3{
		{-fHalfW, -fHalfH, -p.Far},
		{fHalfW, -fHalfH, -p.Far},
		{fHalfW, fHalfH, -p.Far},
		{-fHalfW, fHalfH, -p.Far},
	}

	n, f := g.Near, g.Far
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		g.Edges[i] = Segment{A: n[i], B: f[i], Radius: p.Style.EdgeRadius}
		g.Edges[4+i] = Segment{A: n[i], B: n[j], Radius: p.Style.BaseEdgeRadius}
		g.Edges[8+i] = Segment{A: f[i], B: f[j], Radius: p.Style.BaseEdgeRadius}
	}

	g.Faces = make([]mgl32.Vec3, 0, 30)
	quads := [4][4]mgl32.Vec3{
		{n[0], n[1], f[1], f[0]},
		{n[1], n[2], f[2], f[1]},
		{n[2], n[3], f[3], f[2]},
		{n[3], n[0], f[0], f[3]},
	}
	for _, q := range quads {
		g.Faces = append(g.Faces, q[0], q[1], q[2], q[0], q[2], q[3])
	}
	g.Faces = append(g.Faces, n[0], n[1], n[2], n[0], n[2], n[3])

	return g
}

func (g *Geometry) TriangleCount() int {
	return len(g.Faces) / 3
}

// Dispose drops the renderable buffers. Corners stay readable.
func (g *Geometry) Dispose() {
	if g == nil {
		return
	}
	g.Faces = nil
	g.disposed = true
}

func (g *Geometry) Disposed() bool {
	return g == nil || g.disposed
}
