// Command camfov-snapshot runs the camera overlay against a simulated
// walkthrough and writes a top-down image of every rig's footprint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arksecurity/camfov"
	"github.com/arksecurity/camfov/fov/raster"
	"github.com/arksecurity/camfov/fov/sim"
	"github.com/go-gl/mathgl/mgl32"
)

type options struct {
	configPath string
	scenePath  string
	tagsPath   string
	delivery   string
	outPath    string
	background string
	frames     int
	fps        float64
	width      int
	margin     float64
	viewer     string
	yawDeg     float64
	mode       string
	debug      bool
	realtime   bool
	showHidden bool
	adjust     adjustList
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config overlaid on the built-in defaults")
	flag.StringVar(&opts.scenePath, "scene", "", "scene YAML (required)")
	flag.StringVar(&opts.tagsPath, "tags", "", "tag JSON file")
	flag.StringVar(&opts.delivery, "delivery", "push", "tag delivery: push, pull, none")
	flag.StringVar(&opts.outPath, "out", "snapshot.png", "output image (.png or .webp)")
	flag.StringVar(&opts.background, "background", "", "floorplan image drawn under the footprints (png, jpeg, tga)")
	flag.IntVar(&opts.frames, "frames", 30, "frames to step before the snapshot")
	flag.Float64Var(&opts.fps, "fps", 30, "simulated frame rate")
	flag.IntVar(&opts.width, "width", 1200, "image width in pixels")
	flag.Float64Var(&opts.margin, "margin", 4, "world units of padding around the scene")
	flag.StringVar(&opts.viewer, "viewer", "", "viewer position x,y,z (default: first sweep)")
	flag.Float64Var(&opts.yawDeg, "yaw", 0, "viewer yaw in degrees")
	flag.StringVar(&opts.mode, "mode", "inside", "viewer mode: inside, floorplan, dollhouse, outside")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&opts.realtime, "realtime", false, "step on a wall-clock ticker instead of a simulated clock")
	flag.BoolVar(&opts.showHidden, "show-hidden", false, "draw footprints of hidden rigs in grey")
	flag.Var(&opts.adjust, "adjust", "nudge a control, rig:ROW:steps (repeatable)")
	flag.Parse()

	if opts.scenePath == "" {
		fmt.Fprintf(os.Stderr, "Error: -scene is required\n\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "camfov-snapshot: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg := camfov.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = camfov.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	if opts.debug {
		cfg.Debug = true
	}
	log := camfov.NewDefaultLogger(cfg.LogPrefix, cfg.Debug)

	scene, err := sim.LoadSceneFile(opts.scenePath)
	if err != nil {
		return err
	}
	mode, err := parseMode(opts.mode)
	if err != nil {
		return err
	}

	var hostOpts []sim.Option
	if opts.tagsPath != "" {
		tags, err := camfov.LoadTagFile(opts.tagsPath)
		if err != nil {
			return err
		}
		delivery, err := parseDelivery(opts.delivery)
		if err != nil {
			return err
		}
		hostOpts = append(hostOpts, sim.WithTags(tags, delivery))
	}
	host := sim.NewHost(scene, hostOpts...)

	overlay, err := camfov.NewOverlay(cfg, host, camfov.WithLogger(log))
	if err != nil {
		return err
	}
	if err := overlay.Start(ctx); err != nil {
		return err
	}
	defer overlay.Close()

	for _, a := range opts.adjust {
		text, err := a.apply(overlay.Registry())
		if err != nil {
			return err
		}
		log.Infof("%s %s = %s", a.RigID, a.Row, text)
	}

	viewer, err := viewerPosition(opts.viewer, scene)
	if err != nil {
		return err
	}
	host.SetMode(mode)
	host.MoveViewer(viewer, mgl32.DegToRad(float32(opts.yawDeg)))

	if err := stepFrames(ctx, overlay, opts); err != nil {
		return err
	}
	overlay.Close()

	st := overlay.Scheduler().Stats()
	log.Infof("solves started=%d completed=%d busy=%d throttled=%d hidden=%d",
		st.Started, st.Completed, st.SkippedBusy, st.SkippedThrottled, st.SkippedHidden)

	return render(overlay, scene, viewer, opts)
}

func viewerPosition(s string, scene *sim.SceneFile) (mgl32.Vec3, error) {
	if s != "" {
		return parseVec3(s)
	}
	if len(scene.Sweeps) == 0 {
		return mgl32.Vec3{}, errors.New("no -viewer given and the scene has no sweeps")
	}
	return scene.Sweeps[0].Position, nil
}

func stepFrames(ctx context.Context, o *camfov.Overlay, opts options) error {
	if opts.fps <= 0 {
		return fmt.Errorf("fps must be positive, got %v", opts.fps)
	}
	period := time.Duration(float64(time.Second) / opts.fps)

	if opts.realtime {
		frames := make(chan time.Time)
		go func() {
			defer close(frames)
			ticker := time.NewTicker(period)
			defer ticker.Stop()
			for i := 0; i < opts.frames; i++ {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					select {
					case frames <- now:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
		o.Run(ctx, frames)
		return ctx.Err()
	}

	start := time.Now()
	for i := 0; i < opts.frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.Step(start.Add(time.Duration(i) * period))
		// A simulated clock outruns the solver goroutines.
		o.Scheduler().Wait()
	}
	return nil
}

var (
	paper     = color.NRGBA{R: 0x16, G: 0x18, B: 0x1d, A: 0xff}
	floorInk  = color.NRGBA{R: 0x4a, G: 0x50, B: 0x5c, A: 0xff}
	boxInk    = color.NRGBA{R: 0x9a, G: 0xa3, B: 0xb5, A: 0xff}
	roomInk   = color.NRGBA{R: 0x5f, G: 0x9e, B: 0xd6, A: 0xff}
	viewerInk = color.NRGBA{R: 0xff, G: 0xc8, B: 0x3d, A: 0xff}
)

func render(o *camfov.Overlay, scene *sim.SceneFile, viewer mgl32.Vec3, opts options) error {
	lo, hi := scene.Bounds()
	view, err := raster.FitView(lo, hi, opts.width, float32(opts.margin))
	if err != nil {
		return err
	}
	canvas, err := raster.NewCanvas(view, paper)
	if err != nil {
		return err
	}
	if opts.background != "" {
		bg, err := raster.LoadBackground(opts.background)
		if err != nil {
			return err
		}
		canvas.DrawBackground(bg)
	}

	for _, f := range scene.Floors {
		canvas.Rect(mgl32.Vec2{f.Min[0], f.Min[1]}, mgl32.Vec2{f.Max[0], f.Max[1]}, 1, floorInk)
	}
	for _, b := range scene.Boxes {
		canvas.Rect(mgl32.Vec2{b.Min.X(), b.Min.Z()}, mgl32.Vec2{b.Max.X(), b.Max.Z()}, 1.5, boxInk)
	}
	for _, r := range scene.Rooms {
		canvas.Rect(mgl32.Vec2{r.Min.X(), r.Min.Z()}, mgl32.Vec2{r.Max.X(), r.Max.Z()}, 2, roomInk)
		canvas.Label(mgl32.Vec3{r.Min.X(), 0, r.Min.Z()}, r.Label, roomInk)
	}

	st := raster.StyleFrom(o.Config().Style)
	st.ShowHiddenFOV = opts.showHidden
	canvas.DrawFootprints(o.Footprints(), st)
	canvas.Marker(viewer, 6, viewerInk)

	if err := raster.WriteFile(opts.outPath, canvas.Image()); err != nil {
		return err
	}
	o.Logger().Infof("wrote %s (%dx%d)", opts.outPath, view.Width, view.Height)
	return nil
}
