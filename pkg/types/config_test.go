package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "defaults are valid",
			cfg:  Default(),
		},
		{
			name: "explicit version constraint",
			cfg:  Config{Color: ColorNever, Link: LinkConfig{Constraint: ConstraintVersion}},
		},
		{
			name:    "unknown color mode",
			cfg:     Config{Color: "rainbow", Link: LinkConfig{Constraint: ConstraintPath}},
			wantErr: ErrColorModeUnknown,
		},
		{
			name:    "empty color mode",
			cfg:     Config{Link: LinkConfig{Constraint: ConstraintPath}},
			wantErr: ErrColorModeUnknown,
		},
		{
			name:    "unknown constraint policy",
			cfg:     Config{Color: ColorAuto, Link: LinkConfig{Constraint: "git"}},
			wantErr: ErrConstraintUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCrateDependency(t *testing.T) {
	c := &Crate{
		Name: "cli",
		Kind: KindBin,
		Path: "cli",
		Dependencies: []Dependency{
			{Name: "core", Path: "../core"},
			{Name: "serde", Version: "1.0"},
		},
	}

	dep, ok := c.Dependency("core")
	assert.True(t, ok)
	assert.True(t, dep.IsPath())

	dep, ok = c.Dependency("serde")
	assert.True(t, ok)
	assert.False(t, dep.IsPath())

	assert.False(t, c.DependsOn("missing"))
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindBin))
	assert.True(t, ValidKind(KindLib))
	assert.False(t, ValidKind("dylib"))
	assert.False(t, ValidKind(""))
}
