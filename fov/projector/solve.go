// Package projector turns an idealized frustum into a footprint mesh that
// follows the surfaces the camera actually sees.
package projector

import (
	"context"
	"fmt"
	"math"

	"github.com/arksecurity/camfov/fov/core"
	"github.com/go-gl/mathgl/mgl32"
)

const minSegment = float32(1e-4)

// Sample is the resolved surface point of one grid index, if any.
type Sample struct {
	Point mgl32.Vec3
	OK    bool
}

type Outcome int

const (
	OutcomeEmpty Outcome = iota
	OutcomePartial
	OutcomeFull
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomePartial:
		return "partial"
	case OutcomeFull:
		return "full"
	case OutcomeAborted:
		return "aborted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Request is everything a solve needs, captured on the frame loop so the
// solve never reads live scene nodes.
type Request struct {
	Near        [4]mgl32.Vec3
	Far         [4]mgl32.Vec3
	TiltToWorld mgl32.Mat4
	WorldToRoot mgl32.Mat4
	FloorY      float32
	Policy      MissPolicy
}

type Result struct {
	Outcome   Outcome
	Samples   []Sample
	Hits      int
	Fallbacks int
	Cells     int
}

// PlaneFallback intersects the segment n->f with the horizontal plane y = floorY.
func PlaneFallback(n, f mgl32.Vec3, floorY float32) (mgl32.Vec3, bool) {
	t := float64(floorY-n.Y()) / float64(f.Y()-n.Y())
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 || t > 1 {
		return mgl32.Vec3{}, false
	}
	return n.Add(f.Sub(n).Mul(float32(t))), true
}

// Solve casts one ray per grid point, sequentially, and rewrites mesh once all
// samples are in. Ray-cast errors count as misses.
func Solve(ctx context.Context, rc core.Raycaster, req Request, mesh *Mesh) Result {
	g := mesh.Grid()
	nearPts, farPts := SampleGrid(req.Near, req.Far, g)

	res := Result{Samples: make([]Sample, len(nearPts))}
	abort := func() Result {
		mesh.Hide()
		res.Outcome = OutcomeAborted
		return res
	}

	for i := range nearPts {
		nW := req.TiltToWorld.Mul4x1(nearPts[i].Vec4(1.0)).Vec3()
		fW := req.TiltToWorld.Mul4x1(farPts[i].Vec4(1.0)).Vec3()
		seg := fW.Sub(nW)
		length := seg.Len()
		if length <= minSegment {
			if req.Policy == AbortOnMiss {
				return abort()
			}
			continue
		}
		dir := seg.Mul(1 / length)

		if rc != nil {
			hit, err := rc.Raycast(ctx, nW, dir, length)
			if err == nil && hit.Hit {
				res.Samples[i] = Sample{Point: hit.Position, OK: true}
				res.Hits++
				continue
			}
		}

		p, ok := PlaneFallback(nW, fW, req.FloorY)
		if !ok {
			if req.Policy == AbortOnMiss {
				return abort()
			}
			continue
		}
		res.Samples[i] = Sample{Point: p, OK: true}
		res.Fallbacks++
	}

	res.Cells = mesh.write(res.Samples, req.WorldToRoot)
	switch {
	case res.Cells == 0:
		res.Outcome = OutcomeEmpty
	case res.Cells == g.Cells():
		res.Outcome = OutcomeFull
	default:
		res.Outcome = OutcomePartial
	}
	return res
}
