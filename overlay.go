package camfov

import (
	"context"
	"fmt"
	"time"
)

// Overlay attaches camera rigs to a Host and keeps their cones and
// footprints current, one App frame at a time.
type Overlay struct {
	cfg  Config
	host Host
	app  *App
	log  Logger

	registry  *RigRegistry
	gating    *GatingController
	scheduler *ProjectorScheduler
	tags      *TagClassifier

	detach func()
}

type OverlayOption func(*Overlay)

// WithLogger replaces the logger built from the config.
func WithLogger(l Logger) OverlayOption {
	return func(o *Overlay) {
		o.log = l
	}
}

func NewOverlay(cfg Config, host Host, opts ...OverlayOption) (*Overlay, error) {
	o := &Overlay{cfg: cfg, host: host}
	for _, opt := range opts {
		opt(o)
	}

	classifier, err := NewTagClassifier(cfg.Tags, cfg.Style.Frustum(), cfg.Perf.OutdoorGrid)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	o.tags = classifier

	o.app = NewAppBuilder().
		UseModule(LoggingModule{Prefix: cfg.LogPrefix, Debug: cfg.Debug, Logger: o.log}).
		UseModule(TimeModule{}).
		UseModule(RegistryModule{}).
		UseModule(GatingModule{Config: cfg.GatingConfig()}).
		UseModule(AnimationModule{}).
		UseModule(ProjectorModule{Raycaster: host, Settings: cfg.ProjectorSettings()}).
		Build()

	o.log = o.app.Logger()
	o.registry, _ = Resource[RigRegistry](o.app)
	o.gating, _ = Resource[GatingController](o.app)
	o.scheduler, _ = Resource[ProjectorScheduler](o.app)
	return o, nil
}

// Start waits for the host, creates the indoor rig, subscribes to view
// events and spawns a rig per camera tag. It does not retry a failed connect.
func (o *Overlay) Start(ctx context.Context) error {
	if err := o.host.Connect(ctx); err != nil {
		o.log.Errorf("viewer not ready: %v", err)
		return fmt.Errorf("overlay: connect: %w", err)
	}
	o.scheduler.Bind(ctx)

	if o.cfg.Indoor.Enabled {
		rig := NewRig(o.cfg.IndoorSpec())
		o.registry.Register(rig)
		o.log.Infof("indoor rig %q ready at %v", rig.ID, rig.Config.Position)
	}

	o.detach = o.gating.Attach(o.host)

	tags := DiscoverTags(ctx, o.host, o.cfg.Perf.TagTimeout, o.log)
	spawned := o.SpawnFromTags(ctx, tags)

	admin := 0
	for _, r := range spawned {
		if r.Kind == KindAdminPan {
			admin++
		}
	}
	o.log.Infof("spawned outdoor rigs: %d admin(pan): %d", len(spawned)-admin, admin)

	o.gating.Recompute()
	return nil
}

// SpawnFromTags registers a rig for every camera tag and probes its ground.
func (o *Overlay) SpawnFromTags(ctx context.Context, tags []Tag) []*Rig {
	cams := o.tags.Cameras(tags)
	out := make([]*Rig, 0, len(cams))
	for i, t := range cams {
		rig := NewRig(o.tags.Spec(t, i))
		ground := ProbeGround(ctx, o.host, rig, o.cfg.Tags.GroundProbeDistance)
		o.registry.Register(rig)
		o.log.Debugf("rig %s (%s) %q ground=%.3f room=%q", rig.ID, rig.Kind, rig.Label, ground, rig.RoomID)
		out = append(out, rig)
	}
	return out
}

func (o *Overlay) Step(now time.Time) {
	o.app.Step(now)
}

// Run steps on every frame tick until ctx is done, then waits for solves.
func (o *Overlay) Run(ctx context.Context, frames <-chan time.Time) {
	o.app.Run(ctx, frames)
}

// Close detaches from the host and waits for in-flight solves.
func (o *Overlay) Close() {
	if o.detach != nil {
		o.detach()
		o.detach = nil
	}
	o.app.Stop()
}

func (o *Overlay) App() *App                      { return o.app }
func (o *Overlay) Config() Config                 { return o.cfg }
func (o *Overlay) Logger() Logger                 { return o.log }
func (o *Overlay) Registry() *RigRegistry         { return o.registry }
func (o *Overlay) Gating() *GatingController      { return o.gating }
func (o *Overlay) Scheduler() *ProjectorScheduler { return o.scheduler }
