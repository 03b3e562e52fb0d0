package server

import (
	"path/filepath"
	"testing"

	"github.com/mlachapelle/maisonqc/pkg/constants"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  int64
		expectErr bool
	}{
		{name: "Bare bytes", input: "1024", expected: 1024},
		{name: "Bytes suffix", input: "512B", expected: 512},
		{name: "Kilobytes", input: "256K", expected: 256 * 1024},
		{name: "Kilobytes long", input: "256KB", expected: 256 * 1024},
		{name: "Megabytes", input: "10M", expected: 10 * 1024 * 1024},
		{name: "Gigabytes", input: "1G", expected: 1024 * 1024 * 1024},
		{name: "Lowercase", input: "2m", expected: 2 * 1024 * 1024},
		{name: "Whitespace", input: " 64 K ", expected: 64 * 1024},
		{name: "Empty uses default", input: "", expected: constants.DefaultMaxBodySizeBytes},
		{name: "No digits", input: "MB", expectErr: true},
		{name: "Bad unit", input: "10X", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("ParseSize(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Address != constants.DefaultServerAddress {
		t.Errorf("Address = %s, expected %s", cfg.Address, constants.DefaultServerAddress)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Errorf("BodySizeBytes() = %d, expected %d", cfg.BodySizeBytes(), constants.DefaultMaxBodySizeBytes)
	}
	if cfg.DatabasePath == "" {
		t.Error("expected a default database path")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error for missing file: %v", err)
	}
	if cfg.Address != constants.DefaultServerAddress {
		t.Errorf("Address = %s, expected default", cfg.Address)
	}
}
