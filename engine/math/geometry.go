package math

// GeometryGenerateNormals returns one normal per vertex for flat float
// positions (xyz triples) and triangle indices. Each triangle writes its face
// normal to its three vertices; shared vertices keep the last one written.
func GeometryGenerateNormals(positions []float32, indices []uint16) []float32 {
	normals := make([]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		p0 := vertexAt(positions, i0)
		edge1 := vertexAt(positions, i1).Sub(p0)
		edge2 := vertexAt(positions, i2).Sub(p0)

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := edge1.Cross(edge2).Normalized()
		for _, idx := range []int{i0, i1, i2} {
			normals[idx*3+0] = normal.X
			normals[idx*3+1] = normal.Y
			normals[idx*3+2] = normal.Z
		}
	}
	return normals
}

// GeometryExtents returns the axis aligned bounds of flat xyz positions.
func GeometryExtents(positions []float32) Extents3D {
	if len(positions) < 3 {
		return Extents3D{}
	}
	e := Extents3D{Min: vertexAt(positions, 0), Max: vertexAt(positions, 0)}
	for i := 1; i*3+2 < len(positions); i++ {
		p := vertexAt(positions, i)
		e.Min = Vec3{min(e.Min.X, p.X), min(e.Min.Y, p.Y), min(e.Min.Z, p.Z)}
		e.Max = Vec3{max(e.Max.X, p.X), max(e.Max.Y, p.Y), max(e.Max.Z, p.Z)}
	}
	return e
}

func vertexAt(positions []float32, i int) Vec3 {
	return Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
}

// RayTriangleIntersect intersects ray with triangle (a, b, c) using the
// Moller-Trumbore method. It returns the hit point and true on a hit in front
// of the ray origin. Both faces are considered.
func RayTriangleIntersect(ray Ray, a, b, c Vec3) (Vec3, bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	pvec := ray.Direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if Abs(det) < FLOAT_EPSILON {
		return Vec3{}, false
	}
	invDet := 1 / det
	tvec := ray.Origin.Sub(a)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return Vec3{}, false
	}
	qvec := tvec.Cross(edge1)
	v := ray.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return Vec3{}, false
	}
	t := edge2.Dot(qvec) * invDet
	if t < 0 {
		return Vec3{}, false
	}
	return ray.Origin.Add(ray.Direction.MulScalar(t)), true
}

// RayPlaneIntersect intersects ray with the plane through triangle (a, b, c).
// Unlike RayTriangleIntersect the hit may lie outside the triangle.
func RayPlaneIntersect(ray Ray, a, b, c Vec3) (Vec3, bool) {
	normal := b.Sub(a).Cross(c.Sub(a))
	denom := normal.Dot(ray.Direction)
	if Abs(denom) < FLOAT_EPSILON {
		return Vec3{}, false
	}
	t := normal.Dot(a.Sub(ray.Origin)) / denom
	return ray.Origin.Add(ray.Direction.MulScalar(t)), true
}

// Barycentric returns the barycentric coordinates of p relative to triangle
// (a, b, c). Degenerate triangles yield (1, 0, 0).
func Barycentric(p, a, b, c Vec3) Vec3 {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return Vec3{1, 0, 0}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return Vec3{1 - v - w, v, w}
}

// Unproject maps a point in normalized device coordinates back into the space
// before viewProj was applied.
func Unproject(ndc Vec3, viewProj Mat4) Vec3 {
	return ndc.ToVec4(1).Transform(viewProj.Inverse()).PerspectiveDivide()
}

// CanvasToNDC converts a canvas pixel position (origin top left) into
// normalized device coordinates at depth z.
func CanvasToNDC(canvasPos Vec2, width, height float32, z float32) Vec3 {
	return Vec3{
		X: (2*canvasPos.X)/width - 1,
		Y: 1 - (2*canvasPos.Y)/height,
		Z: z,
	}
}

// CanvasRay builds the world space ray under canvasPos for the given view and
// projection matrices.
func CanvasRay(canvasPos Vec2, width, height float32, view, proj Mat4) Ray {
	viewProj := view.Mul(proj)
	near := Unproject(CanvasToNDC(canvasPos, width, height, -1), viewProj)
	far := Unproject(CanvasToNDC(canvasPos, width, height, 1), viewProj)
	return Ray{Origin: near, Direction: far.Sub(near).Normalized()}
}
