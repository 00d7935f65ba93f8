package math

// NewTransform returns a node at position with the given euler rotation and scale.
func NewTransform(position, rotation, scale Vec3) *Transform {
	return &Transform{
		Position: position,
		Rotation: rotation,
		Scale:    scale,
		IsDirty:  true,
		Local:    NewMat4Identity(),
	}
}

func NewTransformAt(position Vec3) *Transform {
	return NewTransform(position, NewVec3Zero(), NewVec3One())
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.SetPosition(t.Position.Add(translation))
}

func (t *Transform) SetRotation(rotation Vec3) {
	t.Rotation = rotation
	t.IsDirty = true
}

func (t *Transform) Rotate(rotation Vec3) {
	t.SetRotation(t.Rotation.Add(rotation))
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.IsDirty = true
}

// SetParent attaches t below parent. A nil parent detaches it.
func (t *Transform) SetParent(parent *Transform) {
	t.Parent = parent
}

/**
 * @brief The matrix of the node relative to its parent: scale, then
 * rotation, then translation. Rebuilt only after a setter ran.
 */
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.IsDirty {
		rotation := NewMat4EulerXYZ(t.Rotation.X, t.Rotation.Y, t.Rotation.Z)
		t.Local = NewMat4Scale(t.Scale).Mul(rotation).Mul(NewMat4Translation(t.Position))
		t.IsDirty = false
	}
	return t.Local
}

// GetWorld composes the local matrices from t up to the root.
func (t *Transform) GetWorld() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	m := t.GetLocal()
	for p := t.Parent; p != nil; p = p.Parent {
		m = m.Mul(p.GetLocal())
	}
	return m
}
