package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestDefaultValues(t *testing.T) {
	c := Default()
	if c.StoreDir != "/neve/store" {
		t.Fatalf("StoreDir = %q, want /neve/store", c.StoreDir)
	}
	if c.Backend != BackendNative {
		t.Fatalf("Backend = %q, want native", c.Backend)
	}
	if c.BuildJobs <= 0 {
		t.Fatalf("BuildJobs = %d, want > 0", c.BuildJobs)
	}
}

func TestLoadMissingManifestFallsBackToDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.StoreDir != "/neve/store" {
		t.Fatalf("expected defaults when manifest is absent, got StoreDir=%q", c.StoreDir)
	}
}

func TestEnvOverridesWinOverManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neve.yaml")
	cfg := &Config{StoreDir: "/manifest/store", BuildJobs: 1, Backend: BackendNative}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("NEVE_STORE_DIR", "/env/store")
	t.Setenv("NEVE_BUILD_JOBS", "4")
	t.Setenv("NEVE_BUILD_BACKEND", "container")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.StoreDir != "/env/store" {
		t.Fatalf("StoreDir = %q, want env override /env/store", loaded.StoreDir)
	}
	if loaded.BuildJobs != 4 {
		t.Fatalf("BuildJobs = %d, want env override 4", loaded.BuildJobs)
	}
	if loaded.Backend != BackendContainer {
		t.Fatalf("Backend = %q, want env override container", loaded.Backend)
	}
}

func TestLoadManifestDefaultsEntryToSystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	data, err := yaml.Marshal(&Manifest{Module: "config.neve"})
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if loaded.Entry != "system" {
		t.Fatalf("Entry = %q, want default \"system\"", loaded.Entry)
	}
	if loaded.Module != "config.neve" {
		t.Fatalf("Module = %q, want config.neve", loaded.Module)
	}
}
