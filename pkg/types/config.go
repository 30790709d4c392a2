package types

import "errors"

// Color output modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Link constraint policies: a new link is written as a path-only entry or
// with an explicit version constraint copied from the target crate.
const (
	ConstraintPath    = "path"
	ConstraintVersion = "version"
)

// Config validation errors.
var (
	ErrColorModeUnknown  = errors.New("unknown color mode")
	ErrConstraintUnknown = errors.New("unknown link constraint policy")
)

// RunConfig holds default flags for the run command.
type RunConfig struct {
	Parallel        bool `mapstructure:"parallel"`
	ContinueOnError bool `mapstructure:"continue_on_error"`
}

// LinkConfig holds defaults for the link command.
type LinkConfig struct {
	Constraint string `mapstructure:"constraint"`
}

// Config is the tool-level configuration loaded from config.yaml. It never
// lives in a workspace manifest; manifests stay purely workspace data.
type Config struct {
	Color string     `mapstructure:"color"`
	Run   RunConfig  `mapstructure:"run"`
	Link  LinkConfig `mapstructure:"link"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Color: ColorAuto,
		Link:  LinkConfig{Constraint: ConstraintPath},
	}
}

// Validate checks that the Config is well-formed, returning a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return ErrColorModeUnknown
	}
	switch c.Link.Constraint {
	case ConstraintPath, ConstraintVersion:
	default:
		return ErrConstraintUnknown
	}
	return nil
}
