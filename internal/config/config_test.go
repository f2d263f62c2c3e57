package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/me/rrsim/pkg/model"
)

func TestSimConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SimConfig
		wantErr bool
	}{
		{"defaults", DefaultSimConfig(), false},
		{"quantum 1 single core", SimConfig{Quantum: 1, Cores: 1}, false},
		{"max cores", SimConfig{Quantum: 3, Cores: MaxCores}, false},
		{"zero quantum", SimConfig{Quantum: 0, Cores: 2}, true},
		{"negative quantum", SimConfig{Quantum: -1, Cores: 2}, true},
		{"zero cores", SimConfig{Quantum: 2, Cores: 0}, true},
		{"too many cores", SimConfig{Quantum: 2, Cores: MaxCores + 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !model.IsValidation(err) {
				t.Errorf("error code = %s, want VALIDATION_ERROR", model.CodeOf(err))
			}
		})
	}
}

func TestSimConfig_ValidateReportsEveryField(t *testing.T) {
	err := SimConfig{Quantum: 0, Cores: 0}.Validate()
	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("err = %T, want *model.APIError", err)
	}
	if len(apiErr.Details) != 2 {
		t.Errorf("Details = %v, want 2 entries", apiErr.Details)
	}
}

func TestLoadServerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rrsim.yaml")
	content := "addr: \":9090\"\nplay_delay: 250ms\nsim:\n  quantum: 4\n  cores: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.PlayDelay != 250*time.Millisecond {
		t.Errorf("PlayDelay = %v, want 250ms", cfg.PlayDelay)
	}
	if cfg.Sim != (SimConfig{Quantum: 4, Cores: 3}) {
		t.Errorf("Sim = %+v", cfg.Sim)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestLoadServerConfig_InvalidSim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rrsim.yaml")
	if err := os.WriteFile(path, []byte("sim:\n  quantum: 0\n  cores: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadServerConfig(path); !model.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoadServerConfig_Missing(t *testing.T) {
	if _, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
