package camfov

import (
	"encoding/json"
	"iter"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Observable dispatches values to subscribers synchronously, in subscription
// order, on the publishing goroutine.
type Observable[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe adds fn and returns a func that removes it.
func (o *Observable[T]) Subscribe(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.subs = slices.DeleteFunc(o.subs, func(s subscriber[T]) bool { return s.id == id })
	}
}

func (o *Observable[T]) Publish(v T) {
	o.mu.Lock()
	subs := slices.Clone(o.subs)
	o.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}

func (o *Observable[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

type Mode string

const (
	ModeInside        Mode = "mode.inside"
	ModeFloorplan     Mode = "mode.floorplan"
	ModeDollhouse     Mode = "mode.dollhouse"
	ModeOutside       Mode = "mode.outside"
	ModeTransitioning Mode = "mode.transitioning"
)

// Sweep is the viewer's current capture point. RoomID is empty when unknown.
type Sweep struct {
	ID     string
	RoomID string
}

type Pose struct {
	Position mgl32.Vec3
	YawRad   float32
}

// RoomSet is the set of room ids the viewer is currently in.
type RoomSet map[string]struct{}

func NewRoomSet(ids ...string) RoomSet {
	s := make(RoomSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s RoomSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the ids sorted.
func (s RoomSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NormalizeRooms accepts the room payload shapes a host may emit: a list of
// ids, an iterable sequence, a set, or an object carrying an "ids" list.
// Anything else is the empty set.
func NormalizeRooms(payload any) RoomSet {
	switch p := payload.(type) {
	case RoomSet:
		return NewRoomSet(p.IDs()...)
	case []string:
		return NewRoomSet(p...)
	case iter.Seq[string]:
		return NewRoomSet(slices.Collect(p)...)
	case map[string]bool:
		s := RoomSet{}
		for id, in := range p {
			if in && id != "" {
				s[id] = struct{}{}
			}
		}
		return s
	case []any:
		s := RoomSet{}
		for _, v := range p {
			if id, ok := v.(string); ok && id != "" {
				s[id] = struct{}{}
			}
		}
		return s
	case map[string]any:
		return NormalizeRooms(p["ids"])
	case json.RawMessage:
		return normalizeRoomJSON(p)
	case []byte:
		return normalizeRoomJSON(p)
	}
	return RoomSet{}
}

func normalizeRoomJSON(data []byte) RoomSet {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return RoomSet{}
	}
	return NormalizeRooms(v)
}
