package sim

import (
	"context"
	"testing"
	"time"

	"github.com/arksecurity/camfov"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startCampus(t *testing.T) (*camfov.Overlay, *Host) {
	t.Helper()
	tags, err := camfov.LoadTagFile("testdata/tags.json")
	require.NoError(t, err)

	host := NewHost(campus(t), WithTags(tags, TagsPushed))
	o, err := camfov.NewOverlay(camfov.DefaultConfig(), host, camfov.WithLogger(camfov.NewNopLogger()))
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background()))
	t.Cleanup(o.Close)
	return o, host
}

func footprint(t *testing.T, o *camfov.Overlay, id string) camfov.Footprint {
	t.Helper()
	for _, fp := range o.Footprints() {
		if fp.RigID == id {
			return fp
		}
	}
	t.Fatalf("no footprint for %s", id)
	return camfov.Footprint{}
}

func TestOverlay_CampusRigs(t *testing.T) {
	o, _ := startCampus(t)
	reg := o.Registry()

	assert.Equal(t, 5, reg.Len(), "indoor rig plus four camera tags")
	admin, ok := reg.Lookup("tag-admin")
	require.True(t, ok)
	assert.Equal(t, camfov.KindAdminPan, admin.Kind)
	assert.Equal(t, "office-1", admin.RoomID)

	dock, ok := reg.Lookup("out-4")
	require.True(t, ok)
	assert.Equal(t, "Security Camera Loading Dock", dock.Label)
	assert.Equal(t, float32(40), dock.Config.HFovDeg)
	assert.Equal(t, float32(180), dock.Config.BaseYawDeg)

	door, _ := reg.Lookup("tag-2017")
	assert.Equal(t, float32(20), door.Config.TiltDeg, "tag text beats the preset")
	require.NotNil(t, door.GroundY)
	assert.InDelta(t, 0, *door.GroundY, 1e-4)
}

func TestOverlay_CafeteriaFootprint(t *testing.T) {
	o, host := startCampus(t)
	host.MoveViewer(inCafeteria, 0)

	indoor, _ := o.Registry().Lookup("cafeteria")
	admin, _ := o.Registry().Lookup("tag-admin")
	require.True(t, indoor.Visible())
	require.False(t, admin.Visible(), "the admin camera is confined to its office")

	o.Step(time.Unix(0, 0))
	o.Scheduler().Wait()

	fp := footprint(t, o, "cafeteria")
	require.True(t, fp.Visible)
	assert.Len(t, fp.Triangles, 90*3, "every cell lands on the cafeteria floor or walls")
	for _, p := range fp.Triangles {
		assert.GreaterOrEqual(t, p.X(), float32(29.99))
		assert.GreaterOrEqual(t, p.Y(), float32(0.39))
	}
	assert.False(t, footprint(t, o, "tag-admin").Visible)
}

func TestOverlay_WalkToOffice(t *testing.T) {
	o, host := startCampus(t)
	indoor, _ := o.Registry().Lookup("cafeteria")
	admin, _ := o.Registry().Lookup("tag-admin")

	host.MoveViewer(inCafeteria, 0)
	assert.True(t, indoor.Visible())

	host.MoveViewer(inOffice, 0)
	assert.False(t, indoor.Visible())
	assert.True(t, admin.Visible())

	host.SetMode(camfov.ModeFloorplan)
	assert.True(t, indoor.Visible(), "floorplan shows every confined camera")
	assert.True(t, admin.Visible())

	host.SetMode(camfov.ModeInside)
	assert.False(t, indoor.Visible())
}

func TestOverlay_SweepOverFrames(t *testing.T) {
	o, host := startCampus(t)
	host.MoveViewer(inCafeteria, 0)
	indoor, _ := o.Registry().Lookup("cafeteria")

	t0 := time.Unix(0, 0)
	var yaws []float32
	for i := 0; i < 30; i++ {
		o.Step(t0.Add(time.Duration(i) * 100 * time.Millisecond))
		yaws = append(yaws, indoor.PanYaw())
	}
	o.Close()

	assert.NotEqual(t, yaws[0], yaws[len(yaws)-1], "the indoor camera pans")
	stats := o.Scheduler().Stats()
	assert.Equal(t, stats.Started, stats.Completed)
	assert.Positive(t, stats.Started)
}
