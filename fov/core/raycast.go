package core

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
)

type RaycastHit struct {
	Hit      bool
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	T        float32
}

// Raycaster casts a world-space ray of at most maxDist against scene geometry.
// dir is expected to be normalized.
type Raycaster interface {
	Raycast(ctx context.Context, origin, dir mgl32.Vec3, maxDist float32) (RaycastHit, error)
}

// RaycasterFunc adapts a function to Raycaster.
type RaycasterFunc func(ctx context.Context, origin, dir mgl32.Vec3, maxDist float32) (RaycastHit, error)

func (f RaycasterFunc) Raycast(ctx context.Context, origin, dir mgl32.Vec3, maxDist float32) (RaycastHit, error) {
	return f(ctx, origin, dir, maxDist)
}
