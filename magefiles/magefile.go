//go:build mage

// Package main provides build targets for the peniche project using Mage.
//
// Usage:
//
//	mage build     Compile the peniche binary to bin/
//	mage test      Run all tests
//	mage testRace  Run all tests with the race detector
//	mage lint      Run golangci-lint
//	mage clean     Remove build artifacts
//	mage install   Install peniche to GOPATH/bin
//	mage stats     Print Go LOC counts
package main

const (
	binGo      = "go"
	binaryName = "peniche"
	binaryDir  = "bin"
	cmdDir     = "./cmd/peniche"
)
