package camfov

import (
	"time"
)

// FrameClock carries the timestamp handed to App.Step.
type FrameClock struct {
	pending time.Time
}

type Time struct {
	Now   time.Time
	Dt    time.Duration
	Frame uint64
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{})
	app.UseSystem(System(timeSystem).InStage(PreUpdate))
}

// timeSystem advances Time to the frame timestamp. The first frame has Dt == 0.
func timeSystem(timeResource *Time, clock *FrameClock) {
	now := clock.pending

	if !timeResource.Now.IsZero() && now.After(timeResource.Now) {
		timeResource.Dt = now.Sub(timeResource.Now)
	} else {
		timeResource.Dt = 0
	}
	timeResource.Now = now
	timeResource.Frame++
}
