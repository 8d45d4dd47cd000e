package sim

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/arksecurity/camfov"
	"github.com/arksecurity/camfov/fov/core"
	"github.com/arksecurity/camfov/fov/scene"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrNoTagStream = errors.New("sim: tag stream unavailable")

// TagDelivery selects how the host hands out tags.
type TagDelivery int

const (
	// TagsPushed delivers the payload as soon as a subscriber arrives.
	TagsPushed TagDelivery = iota
	// TagsPulled accepts subscriptions but never pushes; only FetchTags answers.
	TagsPulled
	// TagsUnavailable fails subscriptions.
	TagsUnavailable
)

type Option func(*Host)

func WithTags(payload any, delivery TagDelivery) Option {
	return func(h *Host) {
		h.tagPayload = payload
		h.delivery = delivery
	}
}

func WithConnectError(err error) Option {
	return func(h *Host) {
		h.connectErr = err
	}
}

func WithFetchError(err error) Option {
	return func(h *Host) {
		h.fetchErr = err
	}
}

// Host implements camfov.Host over a SceneFile. Events are published
// synchronously on the goroutine that moves the viewer or changes the mode.
type Host struct {
	file  *SceneFile
	scene *scene.Scene

	connectErr error
	fetchErr   error
	tagPayload any
	delivery   TagDelivery

	mode  camfov.Observable[camfov.Mode]
	rooms camfov.Observable[any]
	sweep camfov.Observable[camfov.Sweep]
	pose  camfov.Observable[camfov.Pose]
	tags  camfov.Observable[any]

	mu          sync.Mutex
	curMode     camfov.Mode
	curRooms    []string
	curSweep    string
	curPose     camfov.Pose
	viewerMoved bool
}

var _ camfov.Host = (*Host)(nil)

func NewHost(file *SceneFile, opts ...Option) *Host {
	h := &Host{
		file:     file,
		scene:    file.Build(),
		delivery: TagsPulled,
		curMode:  camfov.ModeInside,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) Scene() *scene.Scene { return h.scene }
func (h *Host) File() *SceneFile    { return h.file }

func (h *Host) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.connectErr
}

func (h *Host) Raycast(ctx context.Context, origin, dir mgl32.Vec3, maxDist float32) (core.RaycastHit, error) {
	return h.scene.Raycast(ctx, origin, dir, maxDist)
}

func (h *Host) SubscribeMode(fn func(camfov.Mode)) func()   { return h.mode.Subscribe(fn) }
func (h *Host) SubscribeRooms(fn func(any)) func()          { return h.rooms.Subscribe(fn) }
func (h *Host) SubscribeSweep(fn func(camfov.Sweep)) func() { return h.sweep.Subscribe(fn) }
func (h *Host) SubscribePose(fn func(camfov.Pose)) func()   { return h.pose.Subscribe(fn) }

func (h *Host) SubscribeTags(fn func(any)) (func(), error) {
	switch h.delivery {
	case TagsUnavailable:
		return nil, ErrNoTagStream
	case TagsPushed:
		unsub := h.tags.Subscribe(fn)
		h.mu.Lock()
		payload := h.tagPayload
		h.mu.Unlock()
		fn(payload)
		return unsub, nil
	}
	return h.tags.Subscribe(fn), nil
}

func (h *Host) FetchTags(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h.fetchErr != nil {
		return nil, h.fetchErr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tagPayload, nil
}

// PushTags replaces the tag payload and publishes it to tag subscribers.
func (h *Host) PushTags(payload any) {
	h.mu.Lock()
	h.tagPayload = payload
	h.mu.Unlock()
	h.tags.Publish(payload)
}

func (h *Host) SetMode(m camfov.Mode) {
	h.mu.Lock()
	h.curMode = m
	h.mu.Unlock()
	h.mode.Publish(m)
}

func (h *Host) Mode() camfov.Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.curMode
}

// RoomsAt returns the ids of every room containing p, in file order.
func (h *Host) RoomsAt(p mgl32.Vec3) []string {
	var ids []string
	for _, r := range h.file.Rooms {
		if r.Contains(p) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// NearestSweep returns the sweep point closest to p.
func (h *Host) NearestSweep(p mgl32.Vec3) (SweepPoint, bool) {
	best := -1
	var bestDist float32
	for i, s := range h.file.Sweeps {
		d := s.Position.Sub(p).Len()
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return SweepPoint{}, false
	}
	return h.file.Sweeps[best], true
}

// sweepRoom is the sweep's declared room, else the first room containing it.
func (h *Host) sweepRoom(s SweepPoint) string {
	if s.Room != "" {
		return s.Room
	}
	if ids := h.RoomsAt(s.Position); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// MoveViewer publishes the new pose, then the room set and sweep if they changed.
func (h *Host) MoveViewer(pos mgl32.Vec3, yawRad float32) {
	pose := camfov.Pose{Position: pos, YawRad: yawRad}
	rooms := h.RoomsAt(pos)
	sw, hasSweep := h.NearestSweep(pos)

	h.mu.Lock()
	first := !h.viewerMoved
	h.viewerMoved = true
	h.curPose = pose
	roomsChanged := first || !slices.Equal(rooms, h.curRooms)
	h.curRooms = rooms
	sweepChanged := hasSweep && (first || sw.ID != h.curSweep)
	if hasSweep {
		h.curSweep = sw.ID
	}
	h.mu.Unlock()

	h.pose.Publish(pose)
	if roomsChanged {
		h.rooms.Publish(slices.Clone(rooms))
	}
	if sweepChanged {
		h.sweep.Publish(camfov.Sweep{ID: sw.ID, RoomID: h.sweepRoom(sw)})
	}
}

func (h *Host) Viewer() camfov.Pose {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.curPose
}
