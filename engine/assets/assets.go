package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima/engine/assets/loaders"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/resources"
)

// eventBuffer is how many change events may wait for the frame loop.
const eventBuffer = 64

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

/** @brief A change to a watched asset file. */
type AssetEvent struct {
	Path    string
	Type    resources.ResourceType
	Removed bool
}

/**
 * @brief Indexes the files of an asset directory and watches it for changes.
 * The watcher runs on its own goroutine and hands changes to the frame loop
 * through the Events channel.
 */
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool
	events   chan AssetEvent
	errors   chan error
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[resources.ResourceType]Loader),
		fsnotify: fsWatch,
		events:   make(chan AssetEvent, eventBuffer),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}

	// Register loaders
	am.registerLoader(resources.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(resources.ResourceTypeImage, &loaders.TextureLoader{})
	am.registerLoader(resources.ResourceTypeMaterial, &loaders.MaterialLoader{})
	return am, nil
}

// Initialize indexes assetsDir and starts watching it and its sub-directories.
func (am *AssetManager) Initialize(assetsDir string) error {
	if err := am.addRecursive(assetsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", assetsDir, err)
	}
	am.started = true
	go am.start()
	return nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(resourceType resources.ResourceType, loader Loader) {
	am.loaders[resourceType] = loader
}

// Lookup finds the indexed file of the given type whose base name, without
// extension, is name.
func (am *AssetManager) Lookup(name string, resourceType resources.ResourceType) (string, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	for path, asset := range am.assets {
		if asset.Type == resourceType && AssetName(path) == name {
			return path, true
		}
	}
	return "", false
}

// Assets lists the indexed files of the given type, sorted by path.
func (am *AssetManager) Assets(resourceType resources.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []AssetInfo
	for _, asset := range am.assets {
		if asset.Type == resourceType {
			out = append(out, asset)
		}
	}
	slices.SortFunc(out, func(a, b AssetInfo) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// LoadAsset loads the asset called name through the loader of its type.
func (am *AssetManager) LoadAsset(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	path, ok := am.Lookup(name, resourceType)
	if !ok {
		return nil, fmt.Errorf("asset not found: %s %s", resourceType, name)
	}
	return am.LoadPath(path, params)
}

// LoadPath loads the indexed file at path.
func (am *AssetManager) LoadPath(path string, params interface{}) (*resources.Resource, error) {
	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[path] = asset // Update the loaded time
	}
	am.mutex.Unlock()
	if !exists {
		return nil, fmt.Errorf("asset not found: %s", path)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(path, asset.Type, params)
}

func (am *AssetManager) UnloadAsset(resource *resources.Resource) error {
	if resource == nil {
		return nil
	}
	path := resource.FullPath
	am.mutex.RLock()
	asset, ok := am.assets[path]
	am.mutex.RUnlock()
	if !ok {
		return nil
	}
	return am.loaders[asset.Type].Unload(resource)
}

// Events delivers changes of watched files. Closed by Shutdown.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	if !am.started {
		// no watcher goroutine to clean up after us
		close(am.events)
		close(am.errors)
		return am.fsnotify.Close()
	}
	return nil
}

func (am *AssetManager) start() {
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("asset watcher: %s", err)
					}
				}
				continue
			}
			event := AssetEvent{Path: e.Name, Type: determineAssetType(e.Name)}
			if event.Type == resources.ResourceTypeNone {
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			} else if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				event.Removed = true
			} else {
				continue
			}
			select {
			case am.events <- event:
			default:
				core.LogWarn("asset watcher: dropped change of %s", e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%s", err)
			select {
			case am.errors <- err:
			default:
			}

		case <-am.done:
			am.fsnotify.Close()
			close(am.events)
			close(am.errors)
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

// AssetName is the base name of path without its extension.
func AssetName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func determineAssetType(path string) resources.ResourceType {
	switch filepath.Ext(path) {
	case ".wgsl":
		return resources.ResourceTypeShader
	case ".png":
		return resources.ResourceTypeImage
	case ".amt":
		return resources.ResourceTypeMaterial
	default:
		return resources.ResourceTypeNone
	}
}
