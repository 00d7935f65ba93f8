package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/components"
)

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/** @brief The maximum number of named cameras that can be managed by the system. */
	MaxCameraCount uint16
}

/**
 * @brief Named cameras shared by reference count. Every camera, the default
 * one included, follows the aspect ratio of the canvas.
 */
type CameraSystem struct {
	Config  *CameraSystemConfig
	Cameras map[string]*components.CameraLookup
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera

	// aspect of the canvas, zero until the first Resize
	aspect float32
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0: %w", core.ErrConfig)
		core.LogError("%s", err)
		return nil, err
	}
	return &CameraSystem{
		Config:        config,
		Cameras:       make(map[string]*components.CameraLookup, config.MaxCameraCount),
		DefaultCamera: components.NewCamera(),
	}, nil
}

func (cs *CameraSystem) Shutdown() error {
	clear(cs.Cameras)
	return nil
}

/**
 * @brief Acquires the camera called name, creating it on first use.
 * Each call takes a reference that Release gives back.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	lookup, ok := cs.Cameras[name]
	if !ok {
		if len(cs.Cameras) >= int(cs.Config.MaxCameraCount) {
			err := fmt.Errorf("camera system is full (%d cameras), cannot create '%s'", cs.Config.MaxCameraCount, name)
			core.LogError("%s", err)
			return nil, err
		}
		camera := components.NewCamera()
		if cs.aspect > 0 {
			camera.SetAspect(cs.aspect)
		}
		lookup = &components.CameraLookup{Camera: camera}
		cs.Cameras[name] = lookup
		core.LogDebug("camera '%s' created", name)
	}
	lookup.ReferenceCount++
	return lookup.Camera, nil
}

// Release drops one reference to the camera called name. The camera is
// forgotten at zero.
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		return
	}
	lookup, ok := cs.Cameras[name]
	if !ok {
		core.LogWarn("cannot release unknown camera '%s'", name)
		return
	}
	lookup.ReferenceCount--
	if lookup.ReferenceCount == 0 {
		delete(cs.Cameras, name)
	}
}

// Resize applies the aspect ratio of a width x height canvas to every camera.
func (cs *CameraSystem) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	cs.aspect = float32(width) / float32(height)
	cs.DefaultCamera.SetAspect(cs.aspect)
	for _, lookup := range cs.Cameras {
		lookup.Camera.SetAspect(cs.aspect)
	}
}

func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}
