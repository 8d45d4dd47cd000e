// Package sim is an in-process stand-in for the hosted walkthrough: a static
// triangle scene with rooms and sweep points, and a movable viewer.
package sim

import (
	"errors"
	"fmt"
	"os"

	"github.com/arksecurity/camfov/fov/scene"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type Floor struct {
	Y   float32    `yaml:"y"`
	Min [2]float32 `yaml:"min"`
	Max [2]float32 `yaml:"max"`
}

type Box struct {
	Name string     `yaml:"name"`
	Min  mgl32.Vec3 `yaml:"min"`
	Max  mgl32.Vec3 `yaml:"max"`
}

// Room is an axis-aligned region. With Walls set its four sides and ceiling
// are added to the scene as well.
type Room struct {
	ID    string     `yaml:"id"`
	Label string     `yaml:"label"`
	Min   mgl32.Vec3 `yaml:"min"`
	Max   mgl32.Vec3 `yaml:"max"`
	Walls bool       `yaml:"walls"`
}

func (r Room) Contains(p mgl32.Vec3) bool {
	return p.X() >= r.Min.X() && p.X() <= r.Max.X() &&
		p.Y() >= r.Min.Y() && p.Y() <= r.Max.Y() &&
		p.Z() >= r.Min.Z() && p.Z() <= r.Max.Z()
}

type SweepPoint struct {
	ID       string     `yaml:"id"`
	Position mgl32.Vec3 `yaml:"position"`
	Room     string     `yaml:"room"`
}

type SceneFile struct {
	Floors []Floor      `yaml:"floors"`
	Boxes  []Box        `yaml:"boxes"`
	Rooms  []Room       `yaml:"rooms"`
	Sweeps []SweepPoint `yaml:"sweeps"`
}

func ParseSceneFile(data []byte) (*SceneFile, error) {
	var f SceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scene file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("scene file: %w", err)
	}
	return &f, nil
}

func LoadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene file: %w", err)
	}
	f, err := ParseSceneFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f *SceneFile) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for i, r := range f.Rooms {
		if r.ID == "" {
			errs = append(errs, fmt.Errorf("rooms[%d]: id is required", i))
		} else if seen[r.ID] {
			errs = append(errs, fmt.Errorf("rooms[%d]: duplicate id %q", i, r.ID))
		}
		seen[r.ID] = true
		if !less(r.Min, r.Max) {
			errs = append(errs, fmt.Errorf("rooms[%d]: min must be below max", i))
		}
	}
	for i, b := range f.Boxes {
		if !less(b.Min, b.Max) {
			errs = append(errs, fmt.Errorf("boxes[%d]: min must be below max", i))
		}
	}
	for i, s := range f.Sweeps {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("sweeps[%d]: id is required", i))
		}
		if s.Room != "" && !seen[s.Room] {
			errs = append(errs, fmt.Errorf("sweeps[%d]: unknown room %q", i, s.Room))
		}
	}
	return errors.Join(errs...)
}

func less(a, b mgl32.Vec3) bool {
	return a.X() < b.X() && a.Y() < b.Y() && a.Z() < b.Z()
}

// Build creates the ray-cast scene: floors, boxes and walled rooms.
func (f *SceneFile) Build() *scene.Scene {
	s := scene.New()
	for _, fl := range f.Floors {
		s.AddFloor(fl.Y, fl.Min[0], fl.Min[1], fl.Max[0], fl.Max[1])
	}
	for _, b := range f.Boxes {
		s.AddBox(b.Min, b.Max)
	}
	for _, r := range f.Rooms {
		if r.Walls {
			addShell(s, r.Min, r.Max)
		}
	}
	s.Commit()
	return s
}

// addShell adds the four walls and the ceiling of a room, leaving the floor
// to the floor list.
func addShell(s *scene.Scene, lo, hi mgl32.Vec3) {
	x0, y0, z0 := lo.X(), lo.Y(), lo.Z()
	x1, y1, z1 := hi.X(), hi.Y(), hi.Z()
	s.AddQuad(mgl32.Vec3{x0, y0, z0}, mgl32.Vec3{x1, y0, z0}, mgl32.Vec3{x1, y1, z0}, mgl32.Vec3{x0, y1, z0})
	s.AddQuad(mgl32.Vec3{x0, y0, z1}, mgl32.Vec3{x1, y0, z1}, mgl32.Vec3{x1, y1, z1}, mgl32.Vec3{x0, y1, z1})
	s.AddQuad(mgl32.Vec3{x0, y0, z0}, mgl32.Vec3{x0, y0, z1}, mgl32.Vec3{x0, y1, z1}, mgl32.Vec3{x0, y1, z0})
	s.AddQuad(mgl32.Vec3{x1, y0, z0}, mgl32.Vec3{x1, y0, z1}, mgl32.Vec3{x1, y1, z1}, mgl32.Vec3{x1, y1, z0})
	s.AddQuad(mgl32.Vec3{x0, y1, z0}, mgl32.Vec3{x1, y1, z0}, mgl32.Vec3{x1, y1, z1}, mgl32.Vec3{x0, y1, z1})
}

// Bounds returns the xz extent of everything in the file.
func (f *SceneFile) Bounds() (lo, hi mgl32.Vec2) {
	first := true
	grow := func(x, z float32) {
		if first {
			lo, hi = mgl32.Vec2{x, z}, mgl32.Vec2{x, z}
			first = false
			return
		}
		lo = mgl32.Vec2{min(lo.X(), x), min(lo.Y(), z)}
		hi = mgl32.Vec2{max(hi.X(), x), max(hi.Y(), z)}
	}
	for _, fl := range f.Floors {
		grow(fl.Min[0], fl.Min[1])
		grow(fl.Max[0], fl.Max[1])
	}
	for _, b := range f.Boxes {
		grow(b.Min.X(), b.Min.Z())
		grow(b.Max.X(), b.Max.Z())
	}
	for _, r := range f.Rooms {
		grow(r.Min.X(), r.Min.Z())
		grow(r.Max.X(), r.Max.Z())
	}
	return lo, hi
}

