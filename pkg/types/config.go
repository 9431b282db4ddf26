package types

import (
	"errors"
	"net/url"
	"time"
)

// Config holds the client settings resolved from flags, environment, and
// config.yaml.
type Config struct {
	APIURL       string        `json:"api_url" yaml:"api_url"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	StateBackend string        `json:"state_backend" yaml:"state_backend"`
	DataDir      string        `json:"data_dir" yaml:"data_dir"`
	LogLevel     string        `json:"log_level" yaml:"log_level"`
}

// Defaults applied when a setting is not configured anywhere.
const (
	DefaultAPIURL  = "http://localhost:3000/api"
	DefaultTimeout = 15 * time.Second
)

// Supported state backends.
const (
	StateBackendSQLite = "sqlite"
	StateBackendFile   = "file"
)

// Config validation errors.
var (
	ErrAPIURLEmpty         = errors.New("api_url must not be empty")
	ErrAPIURLInvalid       = errors.New("api_url must be an absolute http(s) URL")
	ErrTimeoutInvalid      = errors.New("timeout must be positive")
	ErrStateBackendUnknown = errors.New("unknown state backend")
)

var knownStateBackends = map[string]bool{
	StateBackendSQLite: true,
	StateBackendFile:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return ErrAPIURLEmpty
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrAPIURLInvalid
	}
	if c.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	if !knownStateBackends[c.StateBackend] {
		return ErrStateBackendUnknown
	}
	return nil
}
