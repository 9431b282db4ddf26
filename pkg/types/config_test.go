package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		APIURL:       DefaultAPIURL,
		Timeout:      DefaultTimeout,
		StateBackend: StateBackendSQLite,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "file backend is valid",
			mutate:  func(c *Config) { c.StateBackend = StateBackendFile },
			wantErr: nil,
		},
		{
			name:    "empty api url returns ErrAPIURLEmpty",
			mutate:  func(c *Config) { c.APIURL = "" },
			wantErr: ErrAPIURLEmpty,
		},
		{
			name:    "relative api url returns ErrAPIURLInvalid",
			mutate:  func(c *Config) { c.APIURL = "/api" },
			wantErr: ErrAPIURLInvalid,
		},
		{
			name:    "non-http scheme returns ErrAPIURLInvalid",
			mutate:  func(c *Config) { c.APIURL = "ftp://lab.example/api" },
			wantErr: ErrAPIURLInvalid,
		},
		{
			name:    "zero timeout returns ErrTimeoutInvalid",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrTimeoutInvalid,
		},
		{
			name:    "negative timeout returns ErrTimeoutInvalid",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: ErrTimeoutInvalid,
		},
		{
			name:    "unknown state backend returns ErrStateBackendUnknown",
			mutate:  func(c *Config) { c.StateBackend = "postgres" },
			wantErr: ErrStateBackendUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
