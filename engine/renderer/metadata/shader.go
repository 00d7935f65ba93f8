package metadata

import "github.com/google/uuid"

/**
 * @brief A custom WGSL module replacing the generated draw shader. The
 * module must define vs_main and fs_main against the standard bindings.
 * Picking still uses generated shaders.
 */
type Shader struct {
	StateBase
	/** @brief File the source was loaded from, if any. Used for hot reload. */
	Path   string
	Source string
	/** @brief Default values for the module's uniforms. ShaderParams override them. */
	Params map[string]interface{}
	digest string
}

func NewShader(path, source string) *Shader {
	s := &Shader{Path: path, Params: make(map[string]interface{})}
	s.SetSource(source)
	return s
}

// SetSource replaces the module source. Objects using the shader must be
// rebuilt to pick up the change.
func (s *Shader) SetSource(source string) {
	s.Source = source
	s.digest = ""
	if source != "" {
		s.digest = uuid.NewSHA1(uuid.NameSpaceOID, []byte(source)).String()
	}
}

// Hash is a digest of the source, empty when no custom source is set.
func (s *Shader) Hash() string {
	if s.digest == "" && s.Source != "" {
		s.SetSource(s.Source)
	}
	return s.digest
}

func (s *Shader) Custom() bool {
	return s.Source != ""
}

/** @brief Values for the uniforms declared by a custom shader. */
type ShaderParams struct {
	StateBase
	Params map[string]interface{}
}

func NewShaderParams() *ShaderParams {
	return &ShaderParams{Params: make(map[string]interface{})}
}
