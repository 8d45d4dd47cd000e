package camfov

import (
	"fmt"
	"math"
)

// ControlRow is one adjustable rig parameter with a fixed step and range.
type ControlRow struct {
	Name     string
	Unit     string
	Step     float64
	Min, Max float64
	Decimals int

	get func() float32
	set func(float32)
}

func (r *ControlRow) Value() float32 {
	return r.get()
}

func (r *ControlRow) Text() string {
	return fmt.Sprintf("%.*f%s", r.Decimals, r.get(), r.Unit)
}

// Nudge moves the value one step in dir (+1 or -1), rounded to the row's
// decimals and clamped, applies it and returns the formatted value.
func (r *ControlRow) Nudge(dir int) string {
	v := float64(r.get()) + float64(dir)*r.Step
	scale := math.Pow(10, float64(r.Decimals))
	v = math.Round(v*scale) / scale
	v = math.Max(r.Min, math.Min(r.Max, v))
	r.set(float32(v))
	return r.Text()
}

// Controls returns the adjustable rows for rig. Optics rows rebuild the
// frustum; yaw and tilt rows re-pose the pivots.
func Controls(rig *Rig) []*ControlRow {
	cfg := &rig.Config
	row := func(name string, field *float32, step float64, unit string, lo, hi float64, decimals int, apply func()) *ControlRow {
		return &ControlRow{
			Name: name, Unit: unit, Step: step, Min: lo, Max: hi, Decimals: decimals,
			get: func() float32 { return *field },
			set: func(v float32) {
				*field = v
				if apply != nil {
					apply()
				}
			},
		}
	}

	rows := []*ControlRow{
		row("HFOV", &cfg.HFovDeg, 1, "°", 10, 120, 0, rig.Rebuild),
		row("NEAR", &cfg.Near, 0.01, "", 0.02, 1, 2, rig.Rebuild),
		row("FAR", &cfg.Far, 1, "", 2, 120, 0, rig.Rebuild),
	}
	if rig.Kind.Oscillates() {
		speed := row("YawSpd", &cfg.YawSpeedDeg, 1, "°/s", 1, 60, 0, nil)
		speed.get = func() float32 {
			if cfg.YawSpeedDeg == 0 {
				return defaultYawSpeedDeg
			}
			return cfg.YawSpeedDeg
		}
		rows = append(rows,
			row("SWEEP", &cfg.SweepDeg, 2, "°", 4, 170, 0, nil),
			speed,
			row("YAW", &cfg.BaseYawDeg, 1, "°", -180, 180, 0, nil),
		)
	} else {
		rows = append(rows, row("YAW", &cfg.BaseYawDeg, 1, "°", -180, 180, 0, rig.ApplyYaw))
	}
	rows = append(rows, row("TILT", &cfg.TiltDeg, 1, "°", 0, 85, 0, rig.ApplyTilt))
	return rows
}

// ControlByName finds a row by its case-sensitive name.
func ControlByName(rows []*ControlRow, name string) (*ControlRow, bool) {
	for _, r := range rows {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
