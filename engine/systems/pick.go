package systems

import (
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// pickFrustum projects ray picks: a narrow frustum looking down the ray.
var pickFrustum = math.NewMat4Frustum(-1, 1, -1, 1, 0.1, 10000)

/**
 * @brief Finds the object under a canvas position, or along a world space
 * ray when params.CanvasPos is nil. Any pending render runs first.
 *
 * @return The hit, or nil when nothing pickable is there.
 */
func (r *RendererSystem) Pick(params metadata.PickParams) *metadata.PickHit {
	if r.pickBuf == nil {
		r.pickBuf = renderer.NewRenderBuffer(r.device, "pick-"+core.NewObjectID())
	}

	r.Render(RenderParams{})

	if err := r.pickBuf.Bind(); err != nil {
		core.LogError("pick: %s", err)
		return nil
	}
	defer r.pickBuf.Unbind()
	r.pickBuf.Clear()

	width, height := r.device.DrawingBufferSize()
	var (
		x, y              float32
		origin, direction math.Vec3
		pickView          *math.Mat4
		pickProj          *math.Mat4
	)
	if params.CanvasPos == nil {
		origin = params.Origin
		direction = params.Direction
		if direction.LengthSquared() == 0 {
			direction = math.NewVec3(0, 0, 1)
		}
		view := math.NewMat4LookAt(origin, origin.Add(direction), math.NewVec3Up())
		proj := pickFrustum
		pickView, pickProj = &view, &proj
		x, y = float32(width)*0.5, float32(height)*0.5
	} else {
		x, y = params.CanvasPos.X, params.CanvasPos.Y
	}

	r.renderObjectList(walkParams{
		pickObject: true,
		clear:      true,
		pickView:   pickView,
		pickProj:   pickProj,
	})

	px, py := int(x), int(y)
	index := renderer.DecodePickColor(r.pickBuf.Read(px, py), false) - 1
	if index < 0 || index >= len(r.pickList) {
		return nil
	}
	object := r.pickList[index]
	hit := &metadata.PickHit{
		Entity:    object.ID,
		PrimIndex: -1,
		CanvasPos: math.NewVec2(x, y),
	}
	if !params.PickSurface {
		return hit
	}

	r.pickBuf.Clear()
	r.renderObjectList(walkParams{
		pickSurface: true,
		object:      object,
		clear:       true,
		pickView:    pickView,
		pickProj:    pickProj,
	})
	triangle := renderer.DecodePickColor(r.pickBuf.Read(px, py), true) - 1
	if triangle < 0 {
		return hit
	}
	hit.PrimIndex = triangle * 3

	var ray math.Ray
	view := object.State.ViewTransform.Matrix()
	if pickView != nil {
		hit.Origin = origin
		hit.Direction = direction
		view = *pickView
		ray = math.Ray{Origin: origin, Direction: direction.Normalized()}
	} else {
		ray = math.CanvasRay(hit.CanvasPos, float32(width), float32(height), view, object.State.ProjTransform.Matrix())
	}
	surfaceHit(object, hit, ray, view)
	return hit
}

// surfaceHit fills in where ray meets the picked triangle of object.
func surfaceHit(object *renderer.Object, hit *metadata.PickHit, ray math.Ray, view math.Mat4) {
	g := object.State.Geometry
	if hit.PrimIndex+2 >= g.ElementCount() {
		return
	}
	va, vb, vc := g.Element(hit.PrimIndex), g.Element(hit.PrimIndex+1), g.Element(hit.PrimIndex+2)
	model := object.State.ModelTransform.Matrix()
	a := g.Position(va).Transform(model)
	b := g.Position(vb).Transform(model)
	c := g.Position(vc).Transform(model)

	worldPos, ok := math.RayPlaneIntersect(ray, a, b, c)
	if !ok {
		return
	}
	bary := math.Barycentric(worldPos, a, b, c)
	hit.WorldPos = worldPos
	hit.ViewPos = worldPos.Transform(view)
	hit.Bary = bary

	if len(g.Normals) > 0 {
		n := g.Normal(va).MulScalar(bary.X).
			Add(g.Normal(vb).MulScalar(bary.Y)).
			Add(g.Normal(vc).MulScalar(bary.Z))
		hit.Normal = n.TransformDirection(object.State.ModelTransform.NormalMatrix()).Normalized()
	}
	if len(g.UV) > 0 {
		hit.UV = g.TexCoord(va).MulScalar(bary.X).
			Add(g.TexCoord(vb).MulScalar(bary.Y)).
			Add(g.TexCoord(vc).MulScalar(bary.Z))
	}
}
