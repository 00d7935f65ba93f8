/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima/engine"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/testbed"
)

func main() {
	configPath := flag.String("config", "", "TOML engine configuration")
	frames := flag.Uint64("frames", 120, "frames to render before exiting, 0 runs until interrupted")
	flag.Parse()

	config, err := core.LoadEngineConfig(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
		os.Exit(1)
	}

	tb := testbed.NewTestGame(config)

	e, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}
	if err := e.Initialize(); err != nil {
		panic(err)
	}
	e.Platform().MaxFrames = *frames

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the frame loop on the next frame
	go func() {
		<-sigCh
		e.Platform().Quit()
	}()

	if err := e.Run(); err != nil {
		panic(err)
	}

	if config.OutputPath != "" {
		if err := e.SavePNG(config.OutputPath); err != nil {
			core.LogError("failed to write %s: %s", config.OutputPath, err.Error())
		} else {
			core.LogInfo("frame written to %s", config.OutputPath)
		}
	}
	core.LogInfo("%.2f ms per frame", e.Metrics().FrameTime())

	if err := e.Shutdown(); err != nil {
		panic(err)
	}
}
