package camfov

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type GatingConfig struct {
	UseSweepGate    bool    `yaml:"use_sweep_gate"`
	UseRoomGate     bool    `yaml:"use_room_gate"`
	ShowInFloorplan bool    `yaml:"show_in_floorplan"`
	// Pose filter thresholds, filled from PerfConfig.
	MinMove   float32 `yaml:"-"`
	MinYawDeg float32 `yaml:"-"`
}

// GatingController decides which confined rigs are shown, from the latest
// view mode, room set and sweep.
type GatingController struct {
	cfg      GatingConfig
	registry *RigRegistry
	log      Logger

	mode      Mode
	rooms     RoomSet
	sweepRoom string

	lastPose Pose
	havePose bool

	recomputes int
}

func NewGatingController(cfg GatingConfig, registry *RigRegistry, log Logger) *GatingController {
	if log == nil {
		log = NewNopLogger()
	}
	return &GatingController{
		cfg:      cfg,
		registry: registry,
		log:      log,
		rooms:    RoomSet{},
	}
}

// Attach subscribes to every host stream and returns a func that detaches.
func (g *GatingController) Attach(host Host) func() {
	unsubs := []func(){
		host.SubscribeMode(g.OnMode),
		host.SubscribeRooms(g.OnRooms),
		host.SubscribeSweep(g.OnSweep),
		host.SubscribePose(g.OnPose),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (g *GatingController) OnMode(m Mode) {
	g.mode = m
	g.Recompute()
}

func (g *GatingController) OnRooms(payload any) {
	g.rooms = NormalizeRooms(payload)
	g.Recompute()
}

func (g *GatingController) OnSweep(s Sweep) {
	g.sweepRoom = s.RoomID
	g.Recompute()
}

// OnPose recomputes only once the viewer has moved or turned enough since the
// last accepted pose.
func (g *GatingController) OnPose(p Pose) {
	if g.havePose {
		moved := p.Position.Sub(g.lastPose.Position).Len()
		turned := math.Abs(float64(mgl32.RadToDeg(p.YawRad - g.lastPose.YawRad)))
		if moved <= g.cfg.MinMove && turned <= float64(g.cfg.MinYawDeg) {
			return
		}
	}
	g.lastPose = p
	g.havePose = true
	g.Recompute()
}

// Visible applies the gating rule to one rig.
func (g *GatingController) Visible(r *Rig) bool {
	if !r.Confined {
		return true
	}
	bound := r.RoomID
	if bound == "" {
		return true
	}
	if g.mode == ModeFloorplan && g.cfg.ShowInFloorplan {
		return true
	}
	if g.cfg.UseSweepGate && g.sweepRoom != "" {
		return g.sweepRoom == bound
	}
	if g.cfg.UseRoomGate {
		return g.rooms.Has(bound)
	}
	return true
}

func (g *GatingController) Recompute() {
	g.recomputes++
	for _, r := range g.registry.Confined() {
		v := g.Visible(r)
		if v != r.Root.Visible {
			g.log.Debugf("rig %s visible=%t (mode=%s sweepRoom=%q rooms=%v)", r.ID, v, g.mode, g.sweepRoom, g.rooms.IDs())
		}
		r.SetVisible(v)
	}
}

func (g *GatingController) Mode() Mode           { return g.mode }
func (g *GatingController) Rooms() RoomSet       { return g.rooms }
func (g *GatingController) SweepRoom() string    { return g.sweepRoom }
func (g *GatingController) Recomputes() int      { return g.recomputes }
func (g *GatingController) Config() GatingConfig { return g.cfg }

type GatingModule struct {
	Config GatingConfig
}

func (mod GatingModule) Install(app *App, cmd *Commands) {
	registry, ok := Resource[RigRegistry](app)
	if !ok {
		panic("GatingModule requires RegistryModule")
	}
	cmd.AddResources(NewGatingController(mod.Config, registry, app.Logger()))
}
