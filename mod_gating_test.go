package camfov

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allGates() GatingConfig {
	return GatingConfig{UseSweepGate: true, UseRoomGate: true, ShowInFloorplan: true, MinMove: 0.06, MinYawDeg: 1}
}

func confinedRig(room string) *Rig {
	spec := indoorTestSpec()
	spec.RoomID = room
	return NewRig(spec)
}

func TestGatingController_Visible(t *testing.T) {
	tests := []struct {
		name      string
		cfg       GatingConfig
		bound     string
		mode      Mode
		sweepRoom string
		rooms     []string
		want      bool
	}{
		{name: "unbound rig", cfg: allGates(), bound: "", sweepRoom: "other", want: true},
		{name: "floorplan shows", cfg: allGates(), bound: "R", mode: ModeFloorplan, sweepRoom: "other", want: true},
		{name: "floorplan hidden when disabled", cfg: GatingConfig{UseSweepGate: true}, bound: "R", mode: ModeFloorplan, sweepRoom: "other", want: false},
		{name: "sweep in room", cfg: allGates(), bound: "R", mode: ModeInside, sweepRoom: "R", want: true},
		{name: "sweep elsewhere wins over rooms", cfg: allGates(), bound: "R", mode: ModeInside, sweepRoom: "other", rooms: []string{"R"}, want: false},
		{name: "sweep unknown falls to rooms", cfg: allGates(), bound: "R", mode: ModeInside, rooms: []string{"R", "S"}, want: true},
		{name: "not in rooms", cfg: allGates(), bound: "R", mode: ModeInside, rooms: []string{"S"}, want: false},
		{name: "sweep gate off uses rooms", cfg: GatingConfig{UseRoomGate: true}, bound: "R", sweepRoom: "R", rooms: []string{"S"}, want: false},
		{name: "no gates", cfg: GatingConfig{}, bound: "R", sweepRoom: "other", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGatingController(tt.cfg, NewRigRegistry(), nil)
			g.mode = tt.mode
			g.sweepRoom = tt.sweepRoom
			g.rooms = NewRoomSet(tt.rooms...)
			assert.Equal(t, tt.want, g.Visible(confinedRig(tt.bound)))
		})
	}
}

func TestGatingController_NonConfinedAlwaysVisible(t *testing.T) {
	reg := NewRigRegistry()
	spec := outdoorTestSpec("out-1", mgl32.Vec3{})
	spec.RoomID = "R"
	out := NewRig(spec)
	reg.Register(out)

	g := NewGatingController(allGates(), reg, nil)
	g.OnSweep(Sweep{ID: "s", RoomID: "other"})
	assert.True(t, g.Visible(out))
	assert.True(t, out.Visible())
}

func TestGatingController_EventsRecompute(t *testing.T) {
	reg := NewRigRegistry()
	indoor := confinedRig("R")
	reg.Register(indoor)
	host := newFakeHost(missAll())

	g := NewGatingController(allGates(), reg, nil)
	detach := g.Attach(host)

	host.rooms.Publish([]string{"S"})
	assert.False(t, indoor.Visible())

	host.rooms.Publish(map[string]any{"ids": []any{"R"}})
	assert.True(t, indoor.Visible())

	host.sweep.Publish(Sweep{ID: "sw1", RoomID: "S"})
	assert.False(t, indoor.Visible(), "a known sweep room takes precedence")

	host.mode.Publish(ModeFloorplan)
	assert.True(t, indoor.Visible())
	assert.Equal(t, ModeFloorplan, g.Mode())

	host.mode.Publish(ModeInside)
	host.sweep.Publish(Sweep{ID: "sw2"})
	assert.True(t, indoor.Visible(), "unknown sweep room falls back to the room set")

	detach()
	host.rooms.Publish([]string{"S"})
	assert.True(t, indoor.Visible(), "detached controller ignores events")
	assert.Zero(t, host.rooms.Len())
}

func TestGatingController_PoseFilter(t *testing.T) {
	g := NewGatingController(allGates(), NewRigRegistry(), nil)

	g.OnPose(Pose{Position: mgl32.Vec3{1, 0, 0}})
	require.Equal(t, 1, g.Recomputes(), "first pose is always accepted")

	g.OnPose(Pose{Position: mgl32.Vec3{1.05, 0, 0}})
	assert.Equal(t, 1, g.Recomputes(), "small move is ignored")

	g.OnPose(Pose{Position: mgl32.Vec3{1.1, 0, 0}})
	assert.Equal(t, 2, g.Recomputes())

	g.OnPose(Pose{Position: mgl32.Vec3{1.1, 0, 0}, YawRad: mgl32.DegToRad(0.5)})
	assert.Equal(t, 2, g.Recomputes(), "small turn is ignored")

	g.OnPose(Pose{Position: mgl32.Vec3{1.1, 0, 0}, YawRad: mgl32.DegToRad(2)})
	assert.Equal(t, 3, g.Recomputes())
}

func TestGatingModule_RequiresRegistry(t *testing.T) {
	assert.Panics(t, func() {
		NewAppBuilder().UseModule(GatingModule{}).Build()
	})

	app := NewAppBuilder().UseModule(RegistryModule{}, GatingModule{Config: allGates()}).Build()
	g, ok := Resource[GatingController](app)
	require.True(t, ok)
	assert.True(t, g.Config().UseSweepGate)
}
