package metadata

import "github.com/spaghettifunk/anima/engine/math"

/**
 * @brief Input to a pick. With CanvasPos set the pick happens under that
 * canvas pixel. Without it a ray from Origin along Direction is picked.
 */
type PickParams struct {
	CanvasPos   *math.Vec2
	Origin      math.Vec3
	Direction   math.Vec3
	PickSurface bool
}

/** @brief The result of a successful pick. Surface fields are only set for surface picks. */
type PickHit struct {
	Entity string

	/** @brief First element of the picked triangle, -1 when no triangle was picked. */
	PrimIndex int
	/** @brief Ray of a ray pick. */
	Origin    math.Vec3
	Direction math.Vec3

	CanvasPos math.Vec2
	WorldPos  math.Vec3
	ViewPos   math.Vec3
	Bary      math.Vec3
	Normal    math.Vec3
	UV        math.Vec2
}
