package core

import (
	"fmt"

	"github.com/google/uuid"
)

// IDAllocator hands out small integer ids, reusing the slots of released ids
// first. Program ids come from here so that sort keys stay compact.
type IDAllocator struct {
	owners []interface{}
}

func NewIDAllocator(capacity int) *IDAllocator {
	return &IDAllocator{
		owners: make([]interface{}, 0, capacity),
	}
}

// Acquire returns the lowest free id and records owner against it.
func (a *IDAllocator) Acquire(owner interface{}) uint32 {
	for i, o := range a.owners {
		// Existing free spot. Take it.
		if o == nil {
			a.owners[i] = owner
			return uint32(i)
		}
	}
	// No existing free slots, push a new one.
	a.owners = append(a.owners, owner)
	return uint32(len(a.owners) - 1)
}

// Release frees id so that a later Acquire can reuse it.
func (a *IDAllocator) Release(id uint32) error {
	if int(id) >= len(a.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, len(a.owners))
	}
	if a.owners[id] == nil {
		return fmt.Errorf("identifier release: id '%d' is not in use. Nothing was done", id)
	}
	a.owners[id] = nil
	return nil
}

// Owner returns whatever was registered against id, or nil.
func (a *IDAllocator) Owner(id uint32) interface{} {
	if int(id) >= len(a.owners) {
		return nil
	}
	return a.owners[id]
}

// InUse counts the ids currently held.
func (a *IDAllocator) InUse() int {
	n := 0
	for _, o := range a.owners {
		if o != nil {
			n++
		}
	}
	return n
}

// NewObjectID mints an identifier for a render object when the caller has
// none of its own.
func NewObjectID() string {
	return uuid.NewString()
}
