package assets

import "github.com/spaghettifunk/anima/engine/resources"

type Loader interface {
	Load(path string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error)
	Unload(*resources.Resource) error
}
