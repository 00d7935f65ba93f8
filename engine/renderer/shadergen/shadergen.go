// Package shadergen generates the WGSL programs drawn by the renderer and
// compiles them to SPIR-V.
package shadergen

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

var templates = template.Must(template.ParseFS(shaderFS, "shaders/*.wgsl"))

var templateNames = map[metadata.ProgramKind]string{
	metadata.ProgramKindDraw:          "draw.wgsl",
	metadata.ProgramKindPickObject:    "pick_object.wgsl",
	metadata.ProgramKindPickPrimitive: "pick_primitive.wgsl",
}

type lightSlot struct {
	Index       int
	Directional bool
	World       bool
}

type templateData struct {
	renderer.ProgramFeatures
	Label          string
	Lit            bool
	Phong          bool
	LightArraySize int
	LightSlots     []lightSlot
}

// Generate returns the WGSL source of one program variant.
func Generate(kind metadata.ProgramKind, label string, features renderer.ProgramFeatures) (string, error) {
	name, ok := templateNames[kind]
	if !ok {
		return "", fmt.Errorf("no template for program kind %d", kind)
	}
	data := templateData{
		ProgramFeatures: features,
		Label:           label,
		Lit:             features.Material != "" && features.Normals,
		Phong:           features.Material == metadata.MaterialTypePhong,
		LightArraySize:  max(len(features.Lights), 1),
	}
	for i, light := range features.Lights {
		data.LightSlots = append(data.LightSlots, lightSlot{
			Index:       i,
			Directional: light.Type == metadata.LightTypeDirectional,
			World:       light.World,
		})
	}
	var b bytes.Buffer
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to generate %s program: %w", kind, err)
	}
	return b.String(), nil
}

/** @brief The WGSL sources of all variants of one program. */
type Sources struct {
	Features      renderer.ProgramFeatures
	Draw          string
	PickObject    string
	PickPrimitive string
}

// Source returns the source of the kind variant.
func (s *Sources) Source(kind metadata.ProgramKind) string {
	switch kind {
	case metadata.ProgramKindPickObject:
		return s.PickObject
	case metadata.ProgramKindPickPrimitive:
		return s.PickPrimitive
	default:
		return s.Draw
	}
}

// GenerateAll builds every variant for rc. A custom shader replaces the
// generated draw variant; picking always uses generated code.
func GenerateAll(label string, rc *metadata.RenderContext) (*Sources, error) {
	s := &Sources{Features: FeaturesOf(rc)}
	var err error
	if s.Features.Custom {
		s.Draw = rc.Shader.Source
	} else if s.Draw, err = Generate(metadata.ProgramKindDraw, label, s.Features); err != nil {
		return nil, err
	}
	if s.PickObject, err = Generate(metadata.ProgramKindPickObject, label, s.Features); err != nil {
		return nil, err
	}
	if s.PickPrimitive, err = Generate(metadata.ProgramKindPickPrimitive, label, s.Features); err != nil {
		return nil, err
	}
	return s, nil
}
