package camfov

import (
	"fmt"
	"math"

	"github.com/arksecurity/camfov/fov/core"
	"github.com/arksecurity/camfov/fov/frustum"
	"github.com/arksecurity/camfov/fov/projector"
	"github.com/go-gl/mathgl/mgl32"
)

type RigKind int

const (
	KindIndoor RigKind = iota
	KindOutdoor
	KindAdminPan
)

func (k RigKind) String() string {
	switch k {
	case KindIndoor:
		return "indoor"
	case KindOutdoor:
		return "outdoor"
	case KindAdminPan:
		return "admin-pan"
	}
	return fmt.Sprintf("RigKind(%d)", int(k))
}

// Oscillates reports whether rigs of this kind sweep their pan yaw every frame.
func (k RigKind) Oscillates() bool {
	return k == KindIndoor || k == KindAdminPan
}

const defaultYawSpeedDeg = 10

// OpticalConfig is kept in degrees; conversion to radians happens at use.
type OpticalConfig struct {
	Position      mgl32.Vec3 `yaml:"position"`
	HFovDeg       float32    `yaml:"hfov_deg"`
	Aspect        float32    `yaml:"aspect"`
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	ApertureScale float32    `yaml:"aperture_scale"`
	SweepDeg      float32    `yaml:"sweep_deg"`
	BaseYawDeg    float32    `yaml:"base_yaw_deg"`
	YawSpeedDeg   float32    `yaml:"yaw_speed_deg"`
	TiltDeg       float32    `yaml:"tilt_deg"`
}

func (c OpticalConfig) frustumParams(style frustum.Style) frustum.Params {
	return frustum.Params{
		HFovDeg:       c.HFovDeg,
		Aspect:        c.Aspect,
		Near:          c.Near,
		Far:           c.Far,
		ApertureScale: c.ApertureScale,
		Style:         style,
	}
}

type RigSpec struct {
	ID         string
	Label      string
	Kind       RigKind
	Config     OpticalConfig
	Style      frustum.Style
	Grid       projector.Grid
	RoomID     string
	Confined   bool
	FloorY     float32
	MissPolicy projector.MissPolicy
}

// Rig is one camera: a root node at the mount position, a pan pivot and a
// tilt pivot carrying the frustum, plus its footprint mesh.
type Rig struct {
	ID     string
	Label  string
	Kind   RigKind
	Config OpticalConfig
	Style  frustum.Style

	Root *core.Node
	Pan  *core.Node
	Tilt *core.Node

	Frustum   *frustum.Geometry
	Projector *projector.Mesh

	RoomID     string
	Confined   bool
	FloorY     float32
	GroundY    *float32
	MissPolicy projector.MissPolicy

	phase float64
}

func NewRig(spec RigSpec) *Rig {
	r := &Rig{
		ID:         spec.ID,
		Label:      spec.Label,
		Kind:       spec.Kind,
		Config:     spec.Config,
		Style:      spec.Style,
		Root:       core.NewNode("rig:" + spec.ID),
		Pan:        core.NewNode("pan"),
		Tilt:       core.NewNode("tilt"),
		Projector:  projector.NewMesh(spec.Grid),
		RoomID:     spec.RoomID,
		Confined:   spec.Confined,
		FloorY:     spec.FloorY,
		MissPolicy: spec.MissPolicy,
	}
	r.Root.SetPosition(spec.Config.Position)
	r.Root.Add(r.Pan)
	r.Pan.Add(r.Tilt)

	r.Rebuild()
	r.ApplyTilt()
	r.ApplyYaw()
	return r
}

// Rebuild replaces the frustum from the current config and disposes the old one.
func (r *Rig) Rebuild() {
	old := r.Frustum
	r.Frustum = frustum.Build(r.Config.frustumParams(r.Style))
	if old != nil {
		old.Dispose()
	}
}

// ApplyTilt pitches the tilt pivot down by TiltDeg.
func (r *Rig) ApplyTilt() {
	r.Tilt.SetPitch(-mgl32.DegToRad(r.Config.TiltDeg))
}

// ApplyYaw points the pan pivot at BaseYawDeg.
func (r *Rig) ApplyYaw() {
	r.Pan.SetYaw(mgl32.DegToRad(r.Config.BaseYawDeg))
}

// Visible reports whether the rig and everything it draws is shown.
func (r *Rig) Visible() bool {
	return r.Root.VisibleInHierarchy()
}

func (r *Rig) SetVisible(v bool) {
	r.Root.Visible = v
}

// ReferencePlane is the probed ground height when one was cached, else FloorY.
func (r *Rig) ReferencePlane() float32 {
	if r.GroundY != nil {
		return *r.GroundY
	}
	return r.FloorY
}

// SolveRequest captures the frustum corners and transforms the projector needs.
func (r *Rig) SolveRequest() projector.Request {
	return projector.Request{
		Near:        r.Frustum.Near,
		Far:         r.Frustum.Far,
		TiltToWorld: r.Tilt.WorldMatrix(),
		WorldToRoot: r.Root.WorldInverse(),
		FloorY:      r.ReferencePlane(),
		Policy:      r.MissPolicy,
	}
}

// Phase is the current sweep phase in radians.
func (r *Rig) Phase() float64 {
	return r.phase
}

// advanceSweep moves the sweep phase by dt seconds and sets the pan yaw to
// base + sin(phase) * sweep/2.
func (r *Rig) advanceSweep(dt float64) {
	speed := float64(r.Config.YawSpeedDeg)
	if speed == 0 {
		speed = defaultYawSpeedDeg
	}
	r.phase += speed * math.Pi / 180 * dt

	center := float64(mgl32.DegToRad(r.Config.BaseYawDeg))
	amp := float64(mgl32.DegToRad(r.Config.SweepDeg)) / 2
	r.Pan.SetYaw(float32(center + math.Sin(r.phase)*amp))
}

// PanYaw returns the pan pivot yaw in radians.
func (r *Rig) PanYaw() float32 {
	q := r.Pan.Transform.Rotation
	return float32(2 * math.Atan2(float64(q.V.Y()), float64(q.W)))
}
