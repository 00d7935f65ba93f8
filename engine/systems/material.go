package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/resources"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

type MaterialSystemConfig struct {
	MaxMaterialCount uint32
}

type materialReference struct {
	referenceCount uint32
	material       metadata.Material
	// diffuseMap is the texture name acquired for the material, if any.
	diffuseMap string
}

/**
 * @brief Turns material files into material states, shared by name. A
 * diffuse map named by the file is acquired from the texture system.
 */
type MaterialSystem struct {
	config          *MaterialSystemConfig
	defaultMaterial *metadata.PhongMaterial
	registered      map[string]*materialReference
	assetManager    *assets.AssetManager
	textureSystem   *TextureSystem
}

func NewMaterialSystem(config *MaterialSystemConfig, am *assets.AssetManager, ts *TextureSystem) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0: %w", core.ErrConfig)
		core.LogError("%s", err)
		return nil, err
	}
	return &MaterialSystem{
		config:          config,
		defaultMaterial: metadata.NewPhongMaterial(math.NewVec3(1, 1, 1)),
		registered:      make(map[string]*materialReference),
		assetManager:    am,
		textureSystem:   ts,
	}, nil
}

func (ms *MaterialSystem) GetDefault() metadata.Material {
	return ms.defaultMaterial
}

/**
 * @brief Acquires the material called name, loading its file on first use.
 */
func (ms *MaterialSystem) Acquire(name string) (metadata.Material, error) {
	if name == DefaultMaterialName {
		return ms.defaultMaterial, nil
	}
	if ref, ok := ms.registered[name]; ok {
		ref.referenceCount++
		return ref.material, nil
	}
	if uint32(len(ms.registered)) >= ms.config.MaxMaterialCount {
		return nil, fmt.Errorf("unable to load material '%s', material system is full", name)
	}
	resource, err := ms.assetManager.LoadAsset(name, resources.ResourceTypeMaterial, nil)
	if err != nil {
		core.LogError("failed to load material '%s': %s", name, err.Error())
		return nil, err
	}
	defer ms.assetManager.UnloadAsset(resource)

	cfg, ok := resource.Data.(*resources.MaterialConfig)
	if !ok {
		return nil, fmt.Errorf("material resource '%s' holds %T", name, resource.Data)
	}
	ref := &materialReference{referenceCount: 1}
	if err := ms.apply(ref, cfg); err != nil {
		return nil, err
	}
	ms.registered[name] = ref
	return ref.material, nil
}

// apply builds the state for cfg into ref. A material of the same type is
// updated in place so objects already holding it see the new values.
func (ms *MaterialSystem) apply(ref *materialReference, cfg *resources.MaterialConfig) error {
	vec := func(c [3]float32) math.Vec3 { return math.NewVec3(c[0], c[1], c[2]) }
	if ref.diffuseMap != "" && ref.diffuseMap != cfg.DiffuseMap {
		ms.textureSystem.Release(ref.diffuseMap)
		ref.diffuseMap = ""
	}

	switch cfg.Type {
	case "lambert":
		m, ok := ref.material.(*metadata.LambertMaterial)
		if !ok {
			m = metadata.NewLambertMaterial(vec(cfg.Diffuse))
		}
		m.Ambient = vec(cfg.Ambient)
		m.Color = vec(cfg.Diffuse)
		m.Emissive = vec(cfg.Emissive)
		m.Alpha = cfg.Alpha
		ref.material = m
	case "phong":
		m, ok := ref.material.(*metadata.PhongMaterial)
		if !ok {
			m = metadata.NewPhongMaterial(vec(cfg.Diffuse))
		}
		m.Ambient = vec(cfg.Ambient)
		m.Diffuse = vec(cfg.Diffuse)
		m.Specular = vec(cfg.Specular)
		m.Emissive = vec(cfg.Emissive)
		m.Shininess = cfg.Shininess
		m.Alpha = cfg.Alpha
		m.DiffuseMap = nil
		if cfg.DiffuseMap != "" {
			texture, err := ms.acquireDiffuseMap(ref, cfg.DiffuseMap)
			if err != nil {
				return err
			}
			m.DiffuseMap = texture
		}
		ref.material = m
	default:
		return fmt.Errorf("unknown material type %q", cfg.Type)
	}
	return nil
}

func (ms *MaterialSystem) acquireDiffuseMap(ref *materialReference, name string) (*metadata.Texture, error) {
	if ref.diffuseMap == name {
		return ms.textureSystem.RegisteredTextureTable[name].texture, nil
	}
	texture, err := ms.textureSystem.Acquire(name, true)
	if err != nil {
		return nil, err
	}
	ref.diffuseMap = name
	return texture, nil
}

// Lookup returns the registered material called name without taking a reference.
func (ms *MaterialSystem) Lookup(name string) (metadata.Material, bool) {
	ref, ok := ms.registered[name]
	if !ok {
		return nil, false
	}
	return ref.material, true
}

/**
 * @brief Re-reads the material file called name.
 *
 * @return The material state, and whether objects using it must be rebuilt
 * because a different state replaced it or its hash changed.
 */
func (ms *MaterialSystem) Reload(name string) (metadata.Material, bool, error) {
	ref, ok := ms.registered[name]
	if !ok {
		return nil, false, nil
	}
	resource, err := ms.assetManager.LoadAsset(name, resources.ResourceTypeMaterial, nil)
	if err != nil {
		return ref.material, false, err
	}
	defer ms.assetManager.UnloadAsset(resource)
	cfg := resource.Data.(*resources.MaterialConfig)

	before, beforeHash := ref.material, ref.material.Hash()
	if err := ms.apply(ref, cfg); err != nil {
		return ref.material, false, err
	}
	return ref.material, ref.material != before || ref.material.Hash() != beforeHash, nil
}

func (ms *MaterialSystem) Release(name string) {
	if name == DefaultMaterialName {
		return
	}
	ref, ok := ms.registered[name]
	if !ok {
		core.LogWarn("MaterialSystemRelease cannot release unknown material '%s'", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 {
		if ref.diffuseMap != "" {
			ms.textureSystem.Release(ref.diffuseMap)
		}
		delete(ms.registered, name)
	}
}

func (ms *MaterialSystem) Shutdown() error {
	for name := range ms.registered {
		ref := ms.registered[name]
		ref.referenceCount = 1
		ms.Release(name)
	}
	return nil
}
