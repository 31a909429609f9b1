//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the built-in testbed scene.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	return goCmd("run", ".", "-frames", "48")
}

// Renders the example scene and reloads it on change.
func (Run) Scene() error {
	fmt.Println("Run example scene...")
	return goCmd("run", ".", "-config", "configs/hdprman.toml", "-watch")
}
