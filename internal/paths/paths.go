// Package paths locates the configuration and data directories.
//
// Both directories resolve with the same precedence: an explicit flag, then
// the environment, then (data only) the config file, then the platform
// default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "dustnbones"

// Environment variables that override the directories.
const (
	EnvConfigDir = "DUSTNBONES_CONFIG_DIR"
	EnvDataDir   = "DUSTNBONES_DATA_DIR"
)

// Files and subdirectories inside the resolved directories.
const (
	ConfigFileName = "config.yaml"
	StateDirName   = "state"
)

// platform is swapped out in tests.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getenv        func(string) string
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getenv:        os.Getenv,
}

// Dirs is a resolved pair of directories.
type Dirs struct {
	Config string
	Data   string
}

// ConfigFile is the path of config.yaml.
func (d Dirs) ConfigFile() string {
	return filepath.Join(d.Config, ConfigFileName)
}

// StateDir holds file-backed snapshots.
func (d Dirs) StateDir() string {
	return filepath.Join(d.Data, StateDirName)
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/dustnbones (fallback ~/.config/dustnbones)
// Others:  os.UserConfigDir()/dustnbones
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/dustnbones (fallback ~/.local/share/dustnbones)
// Others:  os.UserConfigDir()/dustnbones
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, homeRel string) (string, error) {
	if platform.goos == "linux" {
		if xdg := platform.getenv(env); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platform.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeRel, AppName), nil
	}
	dir, err := platform.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ResolveConfigDir applies flag > DUSTNBONES_CONFIG_DIR > default.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(flag, platform.getenv(EnvConfigDir), "", DefaultConfigDir)
}

// ResolveDataDir applies flag > DUSTNBONES_DATA_DIR > config value > default.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(flag, platform.getenv(EnvDataDir), configValue, DefaultDataDir)
}

func resolve(flag, env, configValue string, fallback func() (string, error)) (string, error) {
	for _, v := range []string{flag, env, configValue} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	return fallback()
}
