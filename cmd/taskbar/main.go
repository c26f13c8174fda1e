// Command taskbar runs a window-list bar on the display server named
// by the environment.
package main

import (
	"image"
	"time"

	"github.com/fenestra-os/display/client"
	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/taskbar"
	"github.com/fenestra-os/display/wndmgt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func run(x, y, width, height int) error {
	app, err := client.Dial()
	if err != nil {
		return err
	}
	defer app.Close()

	// The bar does not exist yet when the management session starts
	// delivering events, so route them through a late-bound set of
	// callbacks. Events are only processed by the Flush loop below,
	// after the bar is in place.
	var cbs wndmgt.Callbacks
	forward := func(cb *func(display.WindowID)) func(display.WindowID) {
		return func(id display.WindowID) {
			if *cb != nil {
				(*cb)(id)
			}
		}
	}
	wm, err := wndmgt.Dial(wndmgt.Callbacks{
		WindowAdded:   forward(&cbs.WindowAdded),
		WindowRemoved: forward(&cbs.WindowRemoved),
		WindowChanged: forward(&cbs.WindowChanged),
	})
	if err != nil {
		return err
	}
	defer wm.Close()

	tb, err := taskbar.New(app, wm, image.Rect(x, y, x+width, y+height))
	if err != nil {
		return err
	}
	defer tb.Destroy()
	cbs = tb.Callbacks()

	tick := time.NewTicker(time.Second / 60)
	defer tick.Stop()
	for range tick.C {
		if err := app.Flush(); err != nil {
			return err
		}
		if err := wm.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	var x, y, width, height int

	root := cobra.Command{
		Use:          "taskbar",
		Short:        "taskbar shows a clickable list of open windows",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(x, y, width, height)
		},
	}

	root.Flags().IntVar(&x, "x", 0, "left edge of the bar")
	root.Flags().IntVar(&y, "y", 0, "top edge of the bar")
	root.Flags().IntVar(&width, "width", 1024, "width of the bar")
	root.Flags().IntVar(&height, "height", 32, "height of the bar")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("exiting")
	}
}
