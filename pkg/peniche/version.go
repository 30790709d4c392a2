// Package peniche exposes the module version.
package peniche

const Version = "0.1.0"
