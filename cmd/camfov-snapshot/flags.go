package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arksecurity/camfov"
	"github.com/arksecurity/camfov/fov/sim"
	"github.com/go-gl/mathgl/mgl32"
)

// adjustment nudges one control row of one rig by Steps (negative for down).
type adjustment struct {
	RigID string
	Row   string
	Steps int
}

// adjustList collects repeated -adjust flags of the form rig:ROW:steps.
type adjustList []adjustment

func (l *adjustList) String() string {
	parts := make([]string, 0, len(*l))
	for _, a := range *l {
		parts = append(parts, fmt.Sprintf("%s:%s:%+d", a.RigID, a.Row, a.Steps))
	}
	return strings.Join(parts, ",")
}

func (l *adjustList) Set(s string) error {
	a, err := parseAdjustment(s)
	if err != nil {
		return err
	}
	*l = append(*l, a)
	return nil
}

func parseAdjustment(s string) (adjustment, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return adjustment{}, fmt.Errorf("adjust %q: want rig:ROW:steps", s)
	}
	steps, err := strconv.Atoi(parts[2])
	if err != nil {
		return adjustment{}, fmt.Errorf("adjust %q: steps: %w", s, err)
	}
	return adjustment{RigID: parts[0], Row: parts[1], Steps: steps}, nil
}

// apply nudges the named row and returns its final text.
func (a adjustment) apply(reg *camfov.RigRegistry) (string, error) {
	rig, ok := reg.Lookup(a.RigID)
	if !ok {
		return "", fmt.Errorf("adjust: no rig %q", a.RigID)
	}
	row, ok := camfov.ControlByName(camfov.Controls(rig), a.Row)
	if !ok {
		return "", fmt.Errorf("adjust: rig %q has no %s control", a.RigID, a.Row)
	}
	dir := 1
	if a.Steps < 0 {
		dir = -1
	}
	text := row.Text()
	for i := 0; i < a.Steps*dir; i++ {
		text = row.Nudge(dir)
	}
	return text, nil
}

func parseVec3(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("vector %q: want x,y,z", s)
	}
	var v mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("vector %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseMode accepts a full mode name or its short form ("floorplan").
func parseMode(s string) (camfov.Mode, error) {
	m := camfov.Mode(s)
	if !strings.HasPrefix(s, "mode.") {
		m = camfov.Mode("mode." + s)
	}
	switch m {
	case camfov.ModeInside, camfov.ModeFloorplan, camfov.ModeDollhouse, camfov.ModeOutside, camfov.ModeTransitioning:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func parseDelivery(s string) (sim.TagDelivery, error) {
	switch s {
	case "push":
		return sim.TagsPushed, nil
	case "pull":
		return sim.TagsPulled, nil
	case "none":
		return sim.TagsUnavailable, nil
	}
	return 0, fmt.Errorf("unknown tag delivery %q (push, pull, none)", s)
}
