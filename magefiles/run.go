//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the testbed scene and writes the last frame to frame.png.
func (Run) Testbed() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run testbed...")
	if _, err := executeCmd("bin/anima", withArgs("-frames", "60"), withStream()); err != nil {
		return err
	}
	return nil
}
