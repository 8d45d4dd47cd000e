package camfov

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arksecurity/camfov/fov/core"
	"github.com/arksecurity/camfov/fov/projector"
)

type ProjectorSettings struct {
	IndoorMinInterval  time.Duration
	OutdoorMinInterval time.Duration
}

type SchedulerStats struct {
	Started          int64
	Completed        int64
	SkippedBusy      int64
	SkippedThrottled int64
	SkippedHidden    int64
}

type solveState struct {
	inFlight atomic.Bool
	last     time.Time
	ran      bool
}

// ProjectorScheduler starts at most one footprint solve per rig at a time,
// no more often than the rig's minimum interval. Skipped requests are dropped.
type ProjectorScheduler struct {
	rc       core.Raycaster
	settings ProjectorSettings
	log      Logger
	ctx      context.Context

	mu     sync.Mutex
	states map[string]*solveState
	wg     sync.WaitGroup

	started, completed            atomic.Int64
	skippedBusy, skippedThrottled atomic.Int64
	skippedHidden                 atomic.Int64
	onResult                      func(*Rig, projector.Result)
}

func NewProjectorScheduler(rc core.Raycaster, settings ProjectorSettings, log Logger) *ProjectorScheduler {
	if log == nil {
		log = NewNopLogger()
	}
	return &ProjectorScheduler{
		rc:       rc,
		settings: settings,
		log:      log,
		ctx:      context.Background(),
		states:   make(map[string]*solveState),
	}
}

// Bind sets the context solves started from the frame loop run under.
func (s *ProjectorScheduler) Bind(ctx context.Context) {
	s.ctx = ctx
}

// OnResult registers fn to be called on the solve goroutine after each solve.
func (s *ProjectorScheduler) OnResult(fn func(*Rig, projector.Result)) {
	s.onResult = fn
}

func (s *ProjectorScheduler) MinInterval(r *Rig) time.Duration {
	if r.Kind == KindIndoor {
		return s.settings.IndoorMinInterval
	}
	return s.settings.OutdoorMinInterval
}

func (s *ProjectorScheduler) state(id string) *solveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok {
		st = &solveState{}
		s.states[id] = st
	}
	return st
}

// Request starts a solve for r at time now if the rig is visible, idle and
// past its minimum interval. A hidden rig has its footprint hidden instead.
// Reports whether a solve was started.
func (s *ProjectorScheduler) Request(ctx context.Context, r *Rig, now time.Time) bool {
	if r.Projector == nil || r.Frustum == nil {
		return false
	}
	if !r.Visible() {
		r.Projector.Hide()
		s.skippedHidden.Add(1)
		return false
	}
	st := s.state(r.ID)
	if st.inFlight.Load() {
		s.skippedBusy.Add(1)
		return false
	}
	if st.ran && now.Sub(st.last) < s.MinInterval(r) {
		s.skippedThrottled.Add(1)
		return false
	}
	if !st.inFlight.CompareAndSwap(false, true) {
		s.skippedBusy.Add(1)
		return false
	}
	st.last = now
	st.ran = true

	req := r.SolveRequest()
	mesh := r.Projector
	s.started.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer st.inFlight.Store(false)

		res := projector.Solve(ctx, s.rc, req, mesh)
		s.completed.Add(1)
		s.log.Debugf("rig %s solve %s: cells=%d hits=%d fallbacks=%d", r.ID, res.Outcome, res.Cells, res.Hits, res.Fallbacks)
		if s.onResult != nil {
			s.onResult(r, res)
		}
	}()
	return true
}

// InFlight reports whether a solve for the rig with id is running.
func (s *ProjectorScheduler) InFlight(id string) bool {
	return s.state(id).inFlight.Load()
}

// Wait blocks until every started solve has finished.
func (s *ProjectorScheduler) Wait() {
	s.wg.Wait()
}

func (s *ProjectorScheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Started:          s.started.Load(),
		Completed:        s.completed.Load(),
		SkippedBusy:      s.skippedBusy.Load(),
		SkippedThrottled: s.skippedThrottled.Load(),
		SkippedHidden:    s.skippedHidden.Load(),
	}
}

type ProjectorModule struct {
	Raycaster core.Raycaster
	Settings  ProjectorSettings
}

func (mod ProjectorModule) Install(app *App, cmd *Commands) {
	sched := NewProjectorScheduler(mod.Raycaster, mod.Settings, app.Logger())
	cmd.AddResources(sched)
	cmd.OnStop(sched.Wait)
	app.UseSystem(System(projectorSystem).InStage(PostUpdate))
}

// projectorSystem requests a solve for every rig with a footprint, the indoor
// rig first.
func projectorSystem(t *Time, registry *RigRegistry, sched *ProjectorScheduler) {
	for _, r := range registry.Projecting() {
		sched.Request(sched.ctx, r, t.Now)
	}
}
