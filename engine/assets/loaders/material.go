package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima/engine/resources"
)

// MaterialLoader reads TOML material files.
type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseMaterial(data)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &resources.Resource{
		Name:     cfg.Name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     cfg,
	}, nil
}

// ParseMaterial decodes a material description on top of the defaults of a
// white phong material.
func ParseMaterial(data []byte) (*resources.MaterialConfig, error) {
	cfg := &resources.MaterialConfig{
		Type:      "phong",
		Ambient:   [3]float32{1, 1, 1},
		Diffuse:   [3]float32{1, 1, 1},
		Specular:  [3]float32{1, 1, 1},
		Shininess: 30,
		Alpha:     1,
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := validateMaterial(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateMaterial(material *resources.MaterialConfig) error {
	if material.Type != "phong" && material.Type != "lambert" {
		return fmt.Errorf("unknown material type %q", material.Type)
	}

	// Check that colour values are within [0.0, 1.0] range
	for name, c := range map[string][3]float32{
		"ambient":  material.Ambient,
		"diffuse":  material.Diffuse,
		"specular": material.Specular,
		"emissive": material.Emissive,
	} {
		if !inRange(c[0]) || !inRange(c[1]) || !inRange(c[2]) {
			return fmt.Errorf("%s values must be between 0.0 and 1.0", name)
		}
	}
	if !inRange(material.Alpha) {
		return fmt.Errorf("alpha must be between 0.0 and 1.0")
	}

	// Check shininess for a non-negative value
	if material.Shininess < 0 {
		return fmt.Errorf("shininess must be a non-negative value")
	}
	return nil
}

// Check if a float32 value is within [0.0, 1.0]
func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}

func (ml *MaterialLoader) Unload(*resources.Resource) error {
	return nil
}
