package camfov

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// OnStop registers fn to run when the App stops.
func (cmd *Commands) OnStop(fn func()) *Commands {
	cmd.app.onStop = append(cmd.app.onStop, fn)
	return cmd
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
