/*
hdprman converts a scene into renderer geometry and keeps it in sync as
the scene changes. Without a scene file it runs the built-in testbed.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/hdprman/engine"
	"github.com/spaghettifunk/hdprman/engine/core"
	"github.com/spaghettifunk/hdprman/engine/prman"
	"github.com/spaghettifunk/hdprman/testbed"
)

func main() {
	configPath := flag.String("config", "", "TOML application config")
	scenePath := flag.String("scene", "", "TOML scene file, overrides the config")
	frames := flag.Int("frames", -1, "number of frames to render, 0 runs until interrupted")
	watch := flag.Bool("watch", false, "reload the scene file when it changes")
	velocityBlur := flag.Bool("velocity-blur", false, "enable the velocityBlur scene index plugin")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := engine.DefaultApplicationConfig()
	if *configPath != "" {
		var err error
		if cfg, err = engine.LoadApplicationConfig(*configPath); err != nil {
			core.LogFatal(err.Error())
		}
	}
	if *scenePath != "" {
		cfg.ScenePath = *scenePath
	}
	if *frames >= 0 {
		cfg.Frames = *frames
	}
	if *watch {
		cfg.WatchScene = true
	}
	if *velocityBlur && !cfg.Render.VelocityBlur() {
		cfg.Render.SceneIndexPlugins = append(cfg.Render.SceneIndexPlugins, prman.PluginVelocityBlur)
	}

	game := &engine.Game{ApplicationConfig: cfg}
	if cfg.ScenePath == "" {
		game = testbed.NewTestGame(cfg).Game
	}

	e, err := engine.New(game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		core.LogFatal(runErr.Error())
	}
}
