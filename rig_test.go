package camfov

import (
	"math"
	"testing"

	"github.com/arksecurity/camfov/fov/frustum"
	"github.com/arksecurity/camfov/fov/projector"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDeltaf(t, want[i], got[i], 1e-4, "component %d: expected %v, got %v", i, want, got)
	}
}

func TestNewRig_Hierarchy(t *testing.T) {
	rig := NewRig(indoorTestSpec())

	assert.Equal(t, "cafeteria", rig.ID)
	assert.Same(t, rig.Root, rig.Pan.Parent())
	assert.Same(t, rig.Pan, rig.Tilt.Parent())
	assertVecNear(t, mgl32.Vec3{45.259, 4.0, -9.45}, rig.Root.WorldPosition())
	assert.InDelta(t, mgl32.DegToRad(93), rig.PanYaw(), 1e-4)
	require.NotNil(t, rig.Frustum)
	require.NotNil(t, rig.Projector)
	assert.Equal(t, projector.Grid{U: 10, V: 6}.BufferLen(), rig.Projector.BufferLen())
	assert.True(t, rig.Confined)
	assert.Equal(t, projector.AbortOnMiss, rig.MissPolicy)
}

func TestRig_TiltPointsDown(t *testing.T) {
	rig := NewRig(outdoorTestSpec("a", mgl32.Vec3{0, 5, 0}))

	forward := rig.Tilt.LocalToWorld(mgl32.Vec3{0, 0, -1}).Sub(rig.Tilt.WorldPosition())
	assert.InDelta(t, -math.Sin(10*math.Pi/180), forward.Y(), 1e-4)

	rig.Config.TiltDeg = 45
	rig.ApplyTilt()
	forward = rig.Tilt.LocalToWorld(mgl32.Vec3{0, 0, -1}).Sub(rig.Tilt.WorldPosition())
	assert.InDelta(t, -0.7071, forward.Y(), 1e-3)
}

func TestRig_RebuildDisposesOld(t *testing.T) {
	rig := NewRig(indoorTestSpec())
	old := rig.Frustum

	rig.Config.Far = 30
	rig.Rebuild()

	assert.True(t, old.Disposed())
	assert.False(t, rig.Frustum.Disposed())
	assert.InDelta(t, 30, rig.Frustum.FarDist, 1e-6)
}

func TestRig_ReferencePlane(t *testing.T) {
	rig := NewRig(indoorTestSpec())
	assert.InDelta(t, 0.4, rig.ReferencePlane(), 1e-6)

	ground := float32(-1.5)
	rig.GroundY = &ground
	assert.InDelta(t, -1.5, rig.ReferencePlane(), 1e-6)
	assert.InDelta(t, -1.5, rig.SolveRequest().FloorY, 1e-6)
}

func TestRig_SolveRequestSnapshots(t *testing.T) {
	rig := NewRig(indoorTestSpec())
	req := rig.SolveRequest()

	assert.Equal(t, rig.Frustum.Near, req.Near)
	assert.Equal(t, rig.Frustum.Far, req.Far)

	// Later pose changes do not leak into a captured request.
	before := req.TiltToWorld
	rig.Pan.SetYaw(1)
	assert.Equal(t, before, req.TiltToWorld)

	// WorldToRoot maps the rig origin back to zero.
	p := req.WorldToRoot.Mul4x1(rig.Root.WorldPosition().Vec4(1)).Vec3()
	assertVecNear(t, mgl32.Vec3{}, p)
}

func TestRigKind(t *testing.T) {
	assert.True(t, KindIndoor.Oscillates())
	assert.True(t, KindAdminPan.Oscillates())
	assert.False(t, KindOutdoor.Oscillates())
	assert.Equal(t, "admin-pan", KindAdminPan.String())
	assert.Equal(t, "RigKind(9)", RigKind(9).String())
}

func TestRig_StyleReachesFrustum(t *testing.T) {
	spec := indoorTestSpec()
	spec.Style = frustum.Style{Color: 0xff0000, FillOpacity: 0.5, EdgeRadius: 0.02, BaseEdgeRadius: 0.01}
	rig := NewRig(spec)
	assert.Equal(t, uint32(0xff0000), rig.Frustum.Style.Color)
}
