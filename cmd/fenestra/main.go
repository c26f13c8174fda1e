// Command fenestra runs the display server on a Linux framebuffer.
package main

import (
	"fmt"
	"image/color"
	"os"
	"os/signal"

	"github.com/fenestra-os/display/display"
	"github.com/fenestra-os/display/fbdev"
	"github.com/fenestra-os/display/server"
	"github.com/fenestra-os/display/xcursor"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/image/colornames"
)

type config struct {
	Socket       string `toml:"socket"`
	Framebuffer  string `toml:"framebuffer"`
	DoubleBuffer bool   `toml:"double_buffer"`
	Background   string `toml:"background"`
	CursorTheme  string `toml:"cursor_theme"`
	CursorSize   int    `toml:"cursor_size"`
	Verbose      bool   `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		Framebuffer:  fbdev.DefaultPath,
		DoubleBuffer: true,
		CursorSize:   24,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %v: %w", path, err)
	}
	return cfg, nil
}

// themeCursor loads the standard pointer cursor from an Xcursor theme.
func themeCursor(theme string, size int) (*display.Cursor, error) {
	t, err := xcursor.LoadTheme(theme, size)
	if err != nil {
		return nil, err
	}
	cur := t.Cursor("left_ptr")
	if cur == nil || len(cur.Frames) == 0 {
		return nil, fmt.Errorf("theme %q has no left_ptr cursor", theme)
	}
	frame := cur.Frames[0]
	return display.NewCursor(frame.Image, frame.Hotspot), nil
}

func background(name string) (color.Color, error) {
	c, ok := colornames.Map[name]
	if !ok {
		return nil, fmt.Errorf("unknown background color %q", name)
	}
	return c, nil
}

func run(cmd *cobra.Command, cfg config) error {
	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var flags display.Flags
	if cfg.DoubleBuffer {
		flags |= display.DoubleBuffered
	}

	disp, err := display.New(flags)
	if err != nil {
		return fmt.Errorf("create display: %w", err)
	}

	if cfg.Background != "" {
		c, err := background(cfg.Background)
		if err != nil {
			return err
		}
		disp.Lock()
		disp.SetBackground(c)
		disp.Unlock()
	}

	fb, err := fbdev.Open(cfg.Framebuffer)
	if err != nil {
		return err
	}
	defer fb.Close()

	disp.Lock()
	disp.AddDDev(fb)
	seat := display.NewSeat()
	disp.AddSeat(seat)
	if cfg.CursorTheme != "" {
		if cur, err := themeCursor(cfg.CursorTheme, cfg.CursorSize); err != nil {
			logrus.WithError(err).Warn("cursor theme unusable, using built-in cursor")
		} else {
			disp.AddCursor(cur)
			if err := seat.SetCursor(cur); err != nil {
				logrus.WithError(err).Warn("set cursor failed")
			}
		}
	}
	err = disp.Paint(disp.Rect())
	disp.Unlock()
	if err != nil {
		return fmt.Errorf("initial paint: %w", err)
	}

	srv, err := server.ListenAndServe(disp, cfg.Socket)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer srv.Close()

	logrus.WithField("socket", srv.Addr()).Info("display server running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	select {
	case <-sig:
	case <-cmd.Context().Done():
	}

	logrus.Info("shutting down")
	srv.Close()

	disp.Lock()
	disp.RemoveDDev(fb)
	disp.RemoveSeat(seat)
	disp.Unlock()
	return disp.Close()
}

func main() {
	var configPath string
	var cfg config

	root := cobra.Command{
		Use:          "fenestra",
		Short:        "fenestra is a framebuffer display server",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags given on the command line win over the file.
			if !cmd.Flags().Changed("socket") {
				cfg.Socket = loaded.Socket
			}
			if !cmd.Flags().Changed("framebuffer") {
				cfg.Framebuffer = loaded.Framebuffer
			}
			if !cmd.Flags().Changed("double-buffer") {
				cfg.DoubleBuffer = loaded.DoubleBuffer
			}
			if !cmd.Flags().Changed("background") {
				cfg.Background = loaded.Background
			}
			if !cmd.Flags().Changed("cursor-theme") {
				cfg.CursorTheme = loaded.CursorTheme
			}
			if !cmd.Flags().Changed("cursor-size") {
				cfg.CursorSize = loaded.CursorSize
			}
			if !cmd.Flags().Changed("verbose") {
				cfg.Verbose = loaded.Verbose
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg)
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.Flags().StringVar(&cfg.Socket, "socket", "", "socket path to listen on (default: generated)")
	root.Flags().StringVar(&cfg.Framebuffer, "framebuffer", fbdev.DefaultPath, "framebuffer device to drive")
	root.Flags().BoolVar(&cfg.DoubleBuffer, "double-buffer", true, "render through an offscreen backbuffer")
	root.Flags().StringVar(&cfg.Background, "background", "", "background color name")
	root.Flags().StringVar(&cfg.CursorTheme, "cursor-theme", "", "Xcursor theme to load the pointer from")
	root.Flags().IntVar(&cfg.CursorSize, "cursor-size", 24, "nominal cursor size")
	root.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("exiting")
	}
}
