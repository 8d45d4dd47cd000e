package camfov

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)

	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Expect panic when trying to add the same type of resource again
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)

	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_addResourcesRejectsValues(t *testing.T) {
	app := newApp()
	require.Panics(t, func() {
		app.addResources(MockResource1{name: "value"})
	})
}

func TestApp_Resource(t *testing.T) {
	app := newApp()
	app.addResources(NewMockResource1("r1"))

	r, ok := Resource[MockResource1](app)
	require.True(t, ok)
	assert.Equal(t, "r1", r.name)

	_, ok = Resource[MockResource2](app)
	assert.False(t, ok)
}

func TestApp_StepRunsStagesInOrder(t *testing.T) {
	app := newApp()
	var calls []string
	app.UseSystem(System(func() { calls = append(calls, "post") }).InStage(PostUpdate))
	app.UseSystem(System(func() { calls = append(calls, "update") }))
	app.UseSystem(System(func() { calls = append(calls, "pre") }).InStage(PreUpdate))
	app.UseSystem(System(func() { calls = append(calls, "update2") }).InStage(Update))

	app.Step(time.Now())

	assert.Equal(t, []string{"pre", "update", "update2", "post"}, calls)
}

func TestApp_SystemInjection(t *testing.T) {
	app := newApp()
	app.addResources(NewMockResource1("injected"))

	var got string
	var gotCommands bool
	app.UseSystem(System(func(r *MockResource1, cmd *Commands) {
		got = r.name
		gotCommands = cmd != nil && cmd.app == app
	}))
	app.Step(time.Now())

	assert.Equal(t, "injected", got)
	assert.True(t, gotCommands)
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := newApp()
	app.UseSystem(System(func(r *MockResource2) {}))
	assert.Panics(t, func() { app.Step(time.Now()) })
}

func TestApp_UnknownStagePanics(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "missing"})) })
}

func TestApp_RunUntilFramesClose(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{}).Build()
	stopped := 0
	app.Commands().OnStop(func() { stopped++ })

	frames := make(chan time.Time, 3)
	t0 := time.Unix(100, 0)
	frames <- t0
	frames <- t0.Add(16 * time.Millisecond)
	frames <- t0.Add(32 * time.Millisecond)
	close(frames)

	app.Run(context.Background(), frames)

	tm, ok := Resource[Time](app)
	require.True(t, ok)
	assert.Equal(t, uint64(3), tm.Frame)
	assert.Equal(t, 16*time.Millisecond, tm.Dt)
	assert.Equal(t, 1, stopped)
}

func TestApp_RunUntilCancelled(t *testing.T) {
	app := NewAppBuilder().Build()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		app.Run(ctx, make(chan time.Time))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_StopRunsHooksInReverse(t *testing.T) {
	app := NewAppBuilder().Build()
	var order []int
	app.Commands().OnStop(func() { order = append(order, 1) }).OnStop(func() { order = append(order, 2) })
	app.Stop()
	assert.Equal(t, []int{2, 1}, order)
}

func TestTimeSystem(t *testing.T) {
	tm := &Time{}
	clock := &FrameClock{}
	t0 := time.Unix(50, 0)

	clock.pending = t0
	timeSystem(tm, clock)
	assert.Equal(t, time.Duration(0), tm.Dt, "first frame has no delta")
	assert.Equal(t, t0, tm.Now)

	clock.pending = t0.Add(20 * time.Millisecond)
	timeSystem(tm, clock)
	assert.Equal(t, 20*time.Millisecond, tm.Dt)

	// A clock going backwards yields a zero delta.
	clock.pending = t0
	timeSystem(tm, clock)
	assert.Equal(t, time.Duration(0), tm.Dt)
	assert.Equal(t, uint64(3), tm.Frame)
}

func TestApp_LoggerDefaultsToNop(t *testing.T) {
	app := NewAppBuilder().Build()
	require.NotNil(t, app.Logger())
	assert.False(t, app.Logger().DebugEnabled())

	var nilApp *App
	require.NotNil(t, nilApp.Logger())
}
