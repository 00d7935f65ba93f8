package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/resources"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

/**
 * @brief Holds the custom WGSL shaders of the asset directory by name. A
 * shader keeps its identity across reloads so objects built with it only
 * need rebuilding to pick up new source.
 */
type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->shader
	Lookup map[string]*metadata.Shader
	// sub systems
	assetManager *assets.AssetManager
}

func NewShaderSystem(config *ShaderSystemConfig, am *assets.AssetManager) (*ShaderSystem, error) {
	if config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0: %w", core.ErrConfig)
		core.LogError("%s", err)
		return nil, err
	}
	return &ShaderSystem{
		Config:       config,
		Lookup:       make(map[string]*metadata.Shader),
		assetManager: am,
	}, nil
}

func (shaderSystem *ShaderSystem) Shutdown() error {
	clear(shaderSystem.Lookup)
	return nil
}

/**
 * @brief Creates a shader from source without an asset file behind it.
 */
func (shaderSystem *ShaderSystem) CreateShader(name, source string) (*metadata.Shader, error) {
	if _, ok := shaderSystem.Lookup[name]; ok {
		return nil, fmt.Errorf("shader '%s' already exists", name)
	}
	if len(shaderSystem.Lookup) >= int(shaderSystem.Config.MaxShaderCount) {
		return nil, fmt.Errorf("shader system is full, cannot create '%s'", name)
	}
	shader := metadata.NewShader("", source)
	shaderSystem.Lookup[name] = shader
	return shader, nil
}

/**
 * @brief Gets the shader called name, loading its WGSL asset on first use.
 */
func (shaderSystem *ShaderSystem) GetShader(shaderName string) (*metadata.Shader, error) {
	if shader, ok := shaderSystem.Lookup[shaderName]; ok {
		return shader, nil
	}
	if len(shaderSystem.Lookup) >= int(shaderSystem.Config.MaxShaderCount) {
		return nil, fmt.Errorf("shader system is full, cannot load '%s'", shaderName)
	}
	resource, err := shaderSystem.assetManager.LoadAsset(shaderName, resources.ResourceTypeShader, nil)
	if err != nil {
		core.LogError("failed to load shader '%s': %s", shaderName, err.Error())
		return nil, err
	}
	defer shaderSystem.assetManager.UnloadAsset(resource)

	source, ok := resource.Data.(string)
	if !ok {
		return nil, fmt.Errorf("shader resource '%s' does not hold source text", shaderName)
	}
	shader := metadata.NewShader(resource.FullPath, source)
	shaderSystem.Lookup[shaderName] = shader
	return shader, nil
}

/**
 * @brief Re-reads the source of every shader loaded from path.
 *
 * @return The shaders whose source changed.
 */
func (shaderSystem *ShaderSystem) Reload(path string) ([]*metadata.Shader, error) {
	var changed []*metadata.Shader
	for name, shader := range shaderSystem.Lookup {
		if shader.Path != path {
			continue
		}
		resource, err := shaderSystem.assetManager.LoadPath(path, nil)
		if err != nil {
			return changed, fmt.Errorf("reload shader '%s': %w", name, err)
		}
		source, _ := resource.Data.(string)
		shaderSystem.assetManager.UnloadAsset(resource)
		if source == shader.Source {
			continue
		}
		shader.SetSource(source)
		core.LogInfo("shader '%s' reloaded", name)
		changed = append(changed, shader)
	}
	return changed, nil
}
