package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Files the engine does not load. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type, decoded to RGBA8. */
	ResourceTypeImage
	/** @brief Material resource type, a TOML material description. */
	ResourceTypeMaterial
	/** @brief Shader resource type, a WGSL module. */
	ResourceTypeShader
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeShader:
		return "shader"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/** @brief Pixels of a decoded image, four bytes per pixel, rows top to bottom. */
type ImageResourceData struct {
	Width  uint32
	Height uint32
	Pixels []uint8
}

type ImageResourceParams struct {
	/** @brief Store rows bottom to top. */
	FlipY bool
}

/** @brief A material as described in a material file. */
type MaterialConfig struct {
	Name string `toml:"name"`
	/** @brief "phong" or "lambert". */
	Type      string     `toml:"type"`
	Ambient   [3]float32 `toml:"ambient"`
	Diffuse   [3]float32 `toml:"diffuse"`
	Specular  [3]float32 `toml:"specular"`
	Emissive  [3]float32 `toml:"emissive"`
	Shininess float32    `toml:"shininess"`
	Alpha     float32    `toml:"alpha"`
	/** @brief Name of the image used as diffuse map, if any. */
	DiffuseMap string `toml:"diffuse_map"`
}
