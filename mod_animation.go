package camfov

type AnimationModule struct{}

func (AnimationModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(animationSystem).InStage(Update))
}

// animationSystem sweeps the pan pivot of every oscillating rig.
func animationSystem(t *Time, registry *RigRegistry) {
	dt := t.Dt.Seconds()
	for _, r := range registry.Oscillating() {
		r.advanceSweep(dt)
	}
}
