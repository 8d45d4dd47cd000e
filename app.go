// Package camfov overlays security-camera field-of-view cones and their
// surface footprints onto a hosted 3D walkthrough.
//
// The overlay is an App made of modules. Each module installs resources and
// systems; App.Step runs every system once per display frame.
package camfov

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"time"
)

type systemFn any

type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	logger    Logger
	clock     *FrameClock
	onStop    []func()
}

func newApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
		clock:     &FrameClock{},
	}
	for _, s := range defaultStages {
		app.stages = append(app.stages, s)
		app.systems[s.Name] = make([]systemFn, 0)
	}
	app.addResources(app.clock)
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Step runs one frame at time now: every stage in order, every system in
// registration order.
func (app *App) Step(now time.Time) {
	app.clock.pending = now
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

// Run steps once per frame tick until ctx is done or frames is closed, then
// calls Stop.
func (app *App) Run(ctx context.Context, frames <-chan time.Time) {
	defer app.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-frames:
			if !ok {
				return
			}
			app.Step(now)
		}
	}
}

// Stop runs the stop hooks registered by modules, in reverse install order.
func (app *App) Stop() {
	for i := len(app.onStop) - 1; i >= 0; i-- {
		app.onStop[i]()
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the installed resource of type *T.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

// callSystem resolves every pointer argument of system from resources and calls it.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) unresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	panic(msg)
}
