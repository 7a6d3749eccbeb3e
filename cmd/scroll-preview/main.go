// Command scroll-preview prints the nav, shade and parallax values the site
// applies for a route while scrolling at a given viewport width.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/go-faster/errors"

	"github.com/ironsignalworks/deadgravel/internal/site"
	"github.com/ironsignalworks/deadgravel/internal/viewport"
)

// countingSink records the latest values and how many writes reached it.
type countingSink struct {
	visuals viewport.Visuals
	writes  int
}

func (s *countingSink) SetNavHidden(v bool)       { s.visuals.NavHidden = v; s.writes++ }
func (s *countingSink) SetShadeOpacity(v float64) { s.visuals.ShadeOpacity = v; s.writes++ }
func (s *countingSink) SetParallaxOffset(v int)   { s.visuals.ParallaxOffset = v; s.writes++ }

type options struct {
	path    string
	width   int
	max     int
	step    int
	reduced bool
}

func main() {
	var opts options
	flag.StringVar(&opts.path, "path", "/bio", "site route to preview")
	flag.IntVar(&opts.width, "width", 1280, "viewport width in pixels")
	flag.IntVar(&opts.max, "max", 480, "last scroll offset")
	flag.IntVar(&opts.step, "step", 40, "scroll offset increment")
	flag.BoolVar(&opts.reduced, "reduced-motion", false, "prefer reduced motion")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, opts); err != nil {
		slog.Error("preview failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, opts options) error {
	if opts.step <= 0 {
		return errors.Errorf("step must be positive, got %d", opts.step)
	}
	if opts.width <= 0 {
		return errors.Errorf("width must be positive, got %d", opts.width)
	}

	path := site.NormalizePath(opts.path)
	maxOpacity := site.MaxOpacity(path)

	win := viewport.NewWindow(opts.width)
	win.SetReducedMotion(opts.reduced)
	bus := viewport.NewBus()
	frames := viewport.NewTickerScheduler(viewport.DefaultFrameInterval)
	sink := &countingSink{}

	obs, ok := viewport.Attach(viewport.Sources{
		Scroll: win,
		Media:  win,
		Motion: win,
		Events: bus,
		Frames: frames,
		Sink:   sink,
	}, maxOpacity)
	if !ok {
		return errors.New("observer did not attach")
	}
	defer obs.Close()

	ctx, cancel := context.WithCancel(ctx)
	ticking := make(chan error, 1)
	go func() { ticking <- frames.Run(ctx) }()
	defer func() {
		cancel()
		<-ticking
	}()

	fmt.Fprintf(out, "route %s, width %dpx (%s), max opacity %.2f\n\n",
		path, opts.width, viewport.ClassifyWidth(opts.width), maxOpacity)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "scrollY\tnav\tshade\tparallax\twrites\t")
	for y := 0; y <= opts.max; y += opts.step {
		win.ScrollTo(y)
		bus.Emit(viewport.EventScroll)
		if err := waitFrame(ctx, frames); err != nil {
			return err
		}

		v := obs.Visuals()
		nav := "shown"
		if v.NavHidden {
			nav = "hidden"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%d\t%d\t\n", y, nav, v.ShadeOpacity, v.ParallaxOffset, sink.writes)
	}
	return tw.Flush()
}

// waitFrame blocks until the scheduler has run every callback queued so far.
func waitFrame(ctx context.Context, frames *viewport.TickerScheduler) error {
	painted := make(chan struct{})
	frames.RequestFrame(func() { close(painted) })
	select {
	case <-painted:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for frame")
	}
}
