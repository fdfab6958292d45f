package variant

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeVariants(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "variants.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing variants: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if len(cfg.Platforms) == 0 || len(cfg.Python) == 0 || len(cfg.NumPy) == 0 {
		t.Fatalf("default config has empty axes: %+v", cfg)
	}
	for _, lang := range []string{"c", "cxx", "fortran"} {
		for _, os := range []string{"linux", "osx", "win"} {
			if _, ok := cfg.Compiler(lang, os); !ok {
				t.Errorf("no default %s compiler for %s", lang, os)
			}
		}
	}
}

func TestLoad(t *testing.T) {
	path := writeVariants(t, `platforms:
  - linux-64
  - linux-aarch64
python:
  - "3.8"
  - "3.9"
numpy:
  - "1.21"
compilers:
  fortran:
    linux: gfortran_linux-64 9
host_versions:
  numpy: "1.21.4"
  zlib: "1.2.11"
pin_upper_bound:
  numpy: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Platforms) != 2 || cfg.Platforms[1] != "linux-aarch64" {
		t.Errorf("platforms = %v", cfg.Platforms)
	}
	if len(cfg.Python) != 2 || cfg.Python[0] != "3.8" {
		t.Errorf("python = %v", cfg.Python)
	}
	if line, ok := cfg.Compiler("fortran", "linux"); !ok || line != "gfortran_linux-64 9" {
		t.Errorf("fortran/linux = %q/%v", line, ok)
	}
	// Languages the file does not mention keep their defaults.
	if line, ok := cfg.Compiler("c", "linux"); !ok || line != "gcc_linux-64 7" {
		t.Errorf("c/linux = %q/%v, want default", line, ok)
	}
	if v, ok := cfg.HostVersion("zlib"); !ok || v != "1.2.11" {
		t.Errorf("host version zlib = %q/%v", v, ok)
	}
	if n := cfg.UpperBoundComponents("numpy"); n != 2 {
		t.Errorf("UpperBoundComponents(numpy) = %d, want 2", n)
	}
	if n := cfg.UpperBoundComponents("scipy"); n != 1 {
		t.Errorf("UpperBoundComponents(scipy) = %d, want 1", n)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	path := writeVariants(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	base := Default()
	if len(cfg.Platforms) != len(base.Platforms) {
		t.Errorf("platforms = %v, want defaults", cfg.Platforms)
	}
	if _, ok := cfg.HostVersion("numpy"); !ok {
		t.Error("default host version for numpy missing")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load succeeded for a missing file")
	}

	path := writeVariants(t, "platforms: [freebsd-64]\n")
	if _, err := Load(path); err == nil {
		t.Error("Load accepted an unknown platform")
	} else if !strings.Contains(err.Error(), "freebsd-64") {
		t.Errorf("error %v does not name the platform", err)
	}

	path = writeVariants(t, "platforms: {a: b}\n")
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed yaml")
	}
}

func TestTargets(t *testing.T) {
	cfg := &Config{
		Platforms: []string{"linux-64", "win-64"},
		Python:    []string{"2.7", "3.7"},
		NumPy:     []string{"1.16", "1.21"},
	}

	targets, err := cfg.Targets(false)
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}
	if len(targets) != 4 {
		t.Fatalf("target count = %d, want 4", len(targets))
	}
	if targets[0].String() != "linux-64 py27" {
		t.Errorf("first target = %q", targets[0])
	}
	for _, target := range targets {
		if target.NumPy != "" {
			t.Errorf("target %s has numpy without the numpy axis", target)
		}
	}

	targets, err = cfg.Targets(true)
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}
	if len(targets) != 8 {
		t.Fatalf("target count with numpy = %d, want 8", len(targets))
	}
	if targets[1].String() != "linux-64 py27 np121" {
		t.Errorf("second target = %q", targets[1])
	}
}
