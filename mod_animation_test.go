package camfov

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectedYaw(baseDeg, sweepDeg, speedDeg, seconds float64) float64 {
	phase := speedDeg * math.Pi / 180 * seconds
	return baseDeg*math.Pi/180 + math.Sin(phase)*sweepDeg*math.Pi/180/2
}

func TestAnimationSystem_SweepsOscillatingRigs(t *testing.T) {
	reg := NewRigRegistry()
	indoor := NewRig(indoorTestSpec())
	outdoor := NewRig(outdoorTestSpec("out-1", mgl32.Vec3{}))
	outdoor.Config.BaseYawDeg = 30
	outdoor.ApplyYaw()
	reg.Register(indoor)
	reg.Register(outdoor)

	tm := &Time{Dt: time.Second}
	animationSystem(tm, reg)

	assert.InDelta(t, expectedYaw(93, 122, 14, 1), indoor.PanYaw(), 1e-4)
	assert.InDelta(t, mgl32.DegToRad(30), outdoor.PanYaw(), 1e-5, "fixed rigs keep their yaw")

	animationSystem(tm, reg)
	assert.InDelta(t, expectedYaw(93, 122, 14, 2), indoor.PanYaw(), 1e-4)
	assert.InDelta(t, 2*14*math.Pi/180, indoor.Phase(), 1e-9)
}

func TestAnimationSystem_ZeroSpeedFallsBack(t *testing.T) {
	reg := NewRigRegistry()
	spec := indoorTestSpec()
	spec.Config.YawSpeedDeg = 0
	rig := NewRig(spec)
	reg.Register(rig)

	animationSystem(&Time{Dt: 500 * time.Millisecond}, reg)
	assert.InDelta(t, 10*math.Pi/180*0.5, rig.Phase(), 1e-9)
}

func TestAnimationSystem_FirstFrameHoldsBaseYaw(t *testing.T) {
	reg := NewRigRegistry()
	rig := NewRig(indoorTestSpec())
	reg.Register(rig)

	animationSystem(&Time{}, reg)
	assert.InDelta(t, mgl32.DegToRad(93), rig.PanYaw(), 1e-5)
}

func TestAnimationModule_RunsInUpdate(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{}, RegistryModule{}, AnimationModule{}).Build()
	reg, ok := Resource[RigRegistry](app)
	require.True(t, ok)
	rig := NewRig(indoorTestSpec())
	reg.Register(rig)

	t0 := time.Unix(1000, 0)
	app.Step(t0)
	app.Step(t0.Add(250 * time.Millisecond))

	assert.InDelta(t, expectedYaw(93, 122, 14, 0.25), rig.PanYaw(), 1e-4)
}
