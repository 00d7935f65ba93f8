package systems

import (
	"github.com/spaghettifunk/anima/engine/renderer"
)

// ObjectSystem recycles render objects through a free list.
type ObjectSystem struct {
	free []*renderer.Object
}

func NewObjectSystem() *ObjectSystem {
	return &ObjectSystem{}
}

// Get returns a cleared object with the given id.
func (os *ObjectSystem) Get(id string) *renderer.Object {
	var o *renderer.Object
	if n := len(os.free); n > 0 {
		o = os.free[n-1]
		os.free[n-1] = nil
		os.free = os.free[:n-1]
	} else {
		o = &renderer.Object{}
	}
	o.Reset(id)
	return o
}

// Put hands o back for reuse. The caller must drop its own reference.
func (os *ObjectSystem) Put(o *renderer.Object) {
	o.Reset("")
	os.free = append(os.free, o)
}

func (os *ObjectSystem) Free() int {
	return len(os.free)
}
