package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dustnbones/internal/paths"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// Config keys in config.yaml and, upper-cased with the DUSTNBONES_ prefix,
// in the environment.
const (
	cfgKeyAPIURL       = "api_url"
	cfgKeyTimeout      = "timeout"
	cfgKeyStateBackend = "state_backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyLogLevel     = "log_level"

	envPrefix = "DUSTNBONES"

	// envViteAPIURL is honored so an existing frontend .env keeps working.
	envViteAPIURL = "VITE_API_URL"
)

// configFile is the layout written to config.yaml by init.
type configFile struct {
	APIURL       string `yaml:"api_url"`
	Timeout      string `yaml:"timeout"`
	StateBackend string `yaml:"state_backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	LogLevel     string `yaml:"log_level"`
}

// loadConfig resolves the effective settings: flags over environment over
// config.yaml over defaults. A missing config.yaml is not an error.
func loadConfig(configDir string, flags *pflag.FlagSet) (types.Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyAPIURL, types.DefaultAPIURL)
	v.SetDefault(cfgKeyTimeout, types.DefaultTimeout)
	v.SetDefault(cfgKeyStateBackend, types.StateBackendSQLite)
	v.SetDefault(cfgKeyLogLevel, "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv(cfgKeyAPIURL, envPrefix+"_API_URL", envViteAPIURL); err != nil {
		return types.Config{}, err
	}

	if flags != nil {
		if f := flags.Lookup("api-url"); f != nil {
			if err := v.BindPFlag(cfgKeyAPIURL, f); err != nil {
				return types.Config{}, err
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		APIURL:       v.GetString(cfgKeyAPIURL),
		Timeout:      v.GetDuration(cfgKeyTimeout),
		StateBackend: v.GetString(cfgKeyStateBackend),
		DataDir:      v.GetString(cfgKeyDataDir),
		LogLevel:     v.GetString(cfgKeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with the given settings. An
// existing file is left alone.
func writeConfigIfMissing(path string, cfg types.Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		APIURL:       cfg.APIURL,
		Timeout:      cfg.Timeout.String(),
		StateBackend: cfg.StateBackend,
		LogLevel:     cfg.LogLevel,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	header := []byte("# dustnbones client configuration\n")
	return true, os.WriteFile(path, append(header, data...), 0o644)
}

// resolveDirs applies the directory precedence for both directories.
func resolveDirs(configFlag, dataFlag, configDataDir string) (paths.Dirs, error) {
	configDir, err := paths.ResolveConfigDir(configFlag)
	if err != nil {
		return paths.Dirs{}, fmt.Errorf("resolve config dir: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(dataFlag, configDataDir)
	if err != nil {
		return paths.Dirs{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return paths.Dirs{Config: configDir, Data: dataDir}, nil
}
