//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the hdprman binary into ./bin.
func (Build) Binary() error {
	return goCmd("build", "-o", "bin/hdprman", ".")
}

// Runs the unit tests of every package.
func (Build) Test() error {
	return goCmd("test", "-race", "./...")
}
