//go:build mage

package main

import "github.com/magefile/mage/sh"

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestRace runs all tests with the race detector. The runner streams
// output from many goroutines; this target is the one that catches
// interleaving mistakes there.
func TestRace() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}
