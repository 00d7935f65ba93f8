package platform

import (
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/software"
)

var startTime = time.Now()

/**
 * @brief A headless platform: the canvas is a software device and the
 * message pump ends the run after a fixed number of frames or on Quit.
 */
type Platform struct {
	Device *software.Device
	// MaxFrames stops the message pump after that many frames. Zero runs until Quit.
	MaxFrames uint64

	frames uint64
	quit   atomic.Bool
}

func New() *Platform {
	return &Platform{}
}

func (p *Platform) Startup(applicationName string, width uint32, height uint32) error {
	p.Device = software.NewDevice(int(width), int(height))
	p.frames = 0
	p.quit.Store(false)
	core.LogInfo("%s: headless canvas %dx%d", applicationName, width, height)
	return nil
}

func (p *Platform) Shutdown() error {
	p.Device = nil
	return nil
}

// Quit makes the next PumpMessages return false. Safe to call from any goroutine.
func (p *Platform) Quit() {
	p.quit.Store(true)
}

// PumpMessages returns false once the platform wants the frame loop to stop.
func (p *Platform) PumpMessages() bool {
	if p.quit.Load() {
		return false
	}
	if p.MaxFrames > 0 && p.frames >= p.MaxFrames {
		return false
	}
	p.frames++
	return true
}

// GetAbsoluteTime returns seconds since the process started.
func GetAbsoluteTime() float64 {
	return time.Since(startTime).Seconds()
}

func (p *Platform) Sleep(ms float64) {
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}
