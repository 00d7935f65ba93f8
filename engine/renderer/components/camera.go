package components

import (
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/**
 * @brief A perspective camera. Objects take its view and projection through
 * the transforms returned by ViewTransform and ProjTransform, which stay the
 * same states for the lifetime of the camera so the renderer's chunks keep
 * pointing at them.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/** @brief The point the camera looks at. */
	Target math.Vec3
	Up     math.Vec3
	/** @brief Vertical field of view in radians. */
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	IsDirty bool

	view *metadata.Transform
	proj *metadata.Transform
}

type CameraLookup struct {
	ReferenceCount uint16
	Camera         *Camera
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera() *Camera {
	camera := &Camera{
		view: metadata.NewIdentityTransform(),
		proj: metadata.NewIdentityTransform(),
	}
	camera.Reset()
	return camera
}

// Reset places the camera at (0, 0, 10) looking at the origin.
func (c *Camera) Reset() {
	c.Position = math.NewVec3(0, 0, 10)
	c.Target = math.NewVec3Zero()
	c.Up = math.NewVec3Up()
	c.FOV = math.DegToRad(45)
	c.Aspect = 1
	c.Near = 0.1
	c.Far = 1000
	c.IsDirty = true
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) SetTarget(target math.Vec3) {
	c.Target = target
	c.IsDirty = true
}

func (c *Camera) SetAspect(aspect float32) {
	c.Aspect = aspect
	c.IsDirty = true
}

func (c *Camera) GetView() math.Mat4 {
	c.Update()
	return c.view.Matrix()
}

func (c *Camera) GetProjection() math.Mat4 {
	c.Update()
	return c.proj.Matrix()
}

// ViewTransform is the state to assign to the view slot of a render context.
func (c *Camera) ViewTransform() *metadata.Transform {
	c.Update()
	return c.view
}

// ProjTransform is the state to assign to the projection slot of a render context.
func (c *Camera) ProjTransform() *metadata.Transform {
	c.Update()
	return c.proj
}

// Update rebuilds the view and projection transforms if anything changed.
func (c *Camera) Update() {
	if !c.IsDirty {
		return
	}
	c.view.SetMatrix(math.NewMat4LookAt(c.Position, c.Target, c.Up))
	c.proj.SetMatrix(math.NewMat4Perspective(c.FOV, c.Aspect, c.Near, c.Far))
	c.IsDirty = false
}

func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalized()
}

func (c *Camera) Right() math.Vec3 {
	return c.Forward().Cross(c.Up).Normalized()
}

// MoveForward moves both the position and the target along the view direction.
func (c *Camera) MoveForward(amount float32) {
	c.move(c.Forward().MulScalar(amount))
}

func (c *Camera) MoveRight(amount float32) {
	c.move(c.Right().MulScalar(amount))
}

func (c *Camera) MoveUp(amount float32) {
	c.move(c.Up.Normalized().MulScalar(amount))
}

func (c *Camera) move(delta math.Vec3) {
	c.Position = c.Position.Add(delta)
	c.Target = c.Target.Add(delta)
	c.IsDirty = true
}

// Orbit rotates the camera position around the target about the up axis.
func (c *Camera) Orbit(yaw float32) {
	offset := c.Position.Sub(c.Target).TransformDirection(math.NewMat4EulerY(yaw))
	c.Position = c.Target.Add(offset)
	c.IsDirty = true
}
