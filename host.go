package camfov

import (
	"context"

	"github.com/arksecurity/camfov/fov/core"
)

// Host is the 3D walkthrough the overlay is attached to. Subscriptions return
// an unsubscribe func and deliver events on the frame loop goroutine.
type Host interface {
	// Connect blocks until the host is ready for queries.
	Connect(ctx context.Context) error
	core.Raycaster
	SubscribeMode(fn func(Mode)) func()
	// SubscribeRooms delivers raw room payloads; see NormalizeRooms.
	SubscribeRooms(fn func(payload any)) func()
	SubscribeSweep(fn func(Sweep)) func()
	SubscribePose(fn func(Pose)) func()
	TagSource
}

// TagSource yields annotation tags, either pushed or on request. Payloads are
// raw; see NormalizeTags.
type TagSource interface {
	SubscribeTags(fn func(payload any)) (func(), error)
	FetchTags(ctx context.Context) (any, error)
}
