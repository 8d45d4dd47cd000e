package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns the local matrix M = T * R * S.
func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// InverseMatrix returns inv(M) = inv(S) * inv(R) * inv(T) without a general inverse.
func (t Transform) InverseMatrix() mgl32.Mat4 {
	invScale := mgl32.Scale3D(safeInv(t.Scale.X()), safeInv(t.Scale.Y()), safeInv(t.Scale.Z()))

	// Conjugate of a unit quaternion is its inverse.
	invRotate := t.Rotation.Normalize().Conjugate().Mat4()

	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1.0 / v
}
