package camfov

import (
	"context"
	"errors"
	"sync"

	"github.com/arksecurity/camfov/fov/core"
	"github.com/arksecurity/camfov/fov/projector"
	"github.com/arksecurity/camfov/fov/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeHost struct {
	core.Raycaster

	connectErr error

	mode  Observable[Mode]
	rooms Observable[any]
	sweep Observable[Sweep]
	pose  Observable[Pose]

	pushTags  any
	push      bool
	subErr    error
	fetchTags any
	fetchErr  error

	mu      sync.Mutex
	fetches int
}

func newFakeHost(rc core.Raycaster) *fakeHost {
	return &fakeHost{Raycaster: rc}
}

func (h *fakeHost) Connect(ctx context.Context) error { return h.connectErr }

func (h *fakeHost) SubscribeMode(fn func(Mode)) func()   { return h.mode.Subscribe(fn) }
func (h *fakeHost) SubscribeRooms(fn func(any)) func()   { return h.rooms.Subscribe(fn) }
func (h *fakeHost) SubscribeSweep(fn func(Sweep)) func() { return h.sweep.Subscribe(fn) }
func (h *fakeHost) SubscribePose(fn func(Pose)) func()   { return h.pose.Subscribe(fn) }

func (h *fakeHost) SubscribeTags(fn func(any)) (func(), error) {
	if h.subErr != nil {
		return nil, h.subErr
	}
	if h.push {
		fn(h.pushTags)
	}
	return func() {}, nil
}

func (h *fakeHost) FetchTags(ctx context.Context) (any, error) {
	h.mu.Lock()
	h.fetches++
	h.mu.Unlock()
	if h.fetchErr != nil {
		return nil, h.fetchErr
	}
	return h.fetchTags, nil
}

var errNotReady = errors.New("not ready")

// floorScene is a single large floor at y.
func floorScene(y float32) *scene.Scene {
	s := scene.New()
	s.AddFloor(y, -100, -100, 100, 100)
	return s
}

func missAll() core.Raycaster {
	return core.RaycasterFunc(func(ctx context.Context, origin, dir mgl32.Vec3, maxDist float32) (core.RaycastHit, error) {
		return core.RaycastHit{}, nil
	})
}

func indoorTestSpec() RigSpec {
	cfg := DefaultConfig()
	return cfg.IndoorSpec()
}

func outdoorTestSpec(id string, pos mgl32.Vec3) RigSpec {
	return RigSpec{
		ID:    id,
		Label: "Security Camera " + id,
		Kind:  KindOutdoor,
		Config: OpticalConfig{
			Position:      pos,
			HFovDeg:       32,
			Near:          0.12,
			Far:           22,
			ApertureScale: 0.22,
			TiltDeg:       10,
		},
		Grid:       projector.Grid{U: 10, V: 6},
		MissPolicy: projector.SkipCell,
	}
}
