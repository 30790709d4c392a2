// Config loading for the peniche CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/kochmaxence/peniche/internal/paths"
	"github.com/kochmaxence/peniche/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Peniche CLI configuration

# Color output: auto, always, never
color: auto

# Defaults for the run command
run:
  parallel: false
  continue_on_error: false

# Defaults for the link command: path or version
link:
  constraint: path
`

func defaultConfig() types.Config {
	return types.Default()
}

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on
// first run; a missing file falls back to the built-in defaults.
func loadConfig(flagDir string) (types.Config, error) {
	out := types.Default()

	configDir, err := paths.ResolveConfigDir(flagDir)
	if err != nil {
		return out, fmt.Errorf("resolve config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return out, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault("color", out.Color)
	v.SetDefault("run.parallel", out.Run.Parallel)
	v.SetDefault("run.continue_on_error", out.Run.ContinueOnError)
	v.SetDefault("link.constraint", out.Link.Constraint)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return out, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&out); err != nil {
		return out, fmt.Errorf("decode config: %w", err)
	}
	return out, nil
}

// ensureDefaultConfigFile creates the config directory and a default
// config.yaml when neither exists yet.
func ensureDefaultConfigFile(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
