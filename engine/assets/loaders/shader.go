package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/anima/engine/resources"
)

// ShaderLoader reads WGSL modules. The resource data is the source text.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(*resources.Resource) error {
	return nil
}
