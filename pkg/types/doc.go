// Package types defines the workspace entity types, script and command
// specifications, and the standard errors shared across peniche packages.
package types
