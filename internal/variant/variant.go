// Package variant loads the build matrix configuration: which
// platforms and interpreter versions to build for, which compiler
// packages each operating system uses, and how pins concretize.
package variant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quernbuild/quern/internal/platform"
)

// Config is the build matrix configuration.
type Config struct {
	Platforms     []string                     `yaml:"platforms"`
	Python        []string                     `yaml:"python"`
	NumPy         []string                     `yaml:"numpy"`
	Compilers     map[string]map[string]string `yaml:"compilers"`
	HostVersions  map[string]string            `yaml:"host_versions"`
	PinUpperBound map[string]int               `yaml:"pin_upper_bound"`
}

// Default returns the configuration used when no variants file is
// given. It mirrors the stock community build matrix.
func Default() *Config {
	return &Config{
		Platforms: []string{"linux-64", "osx-64", "win-64"},
		Python:    []string{"2.7", "3.6", "3.7"},
		NumPy:     []string{"1.16"},
		Compilers: map[string]map[string]string{
			"c": {
				"linux": "gcc_linux-64 7",
				"osx":   "clang_osx-64 9",
				"win":   "vs2017_win-64",
			},
			"cxx": {
				"linux": "gxx_linux-64 7",
				"osx":   "clangxx_osx-64 9",
				"win":   "vs2017_win-64",
			},
			"fortran": {
				"linux": "gfortran_linux-64 7",
				"osx":   "gfortran_osx-64 7",
				"win":   "flang 5",
			},
		},
		HostVersions: map[string]string{
			"numpy": "1.16.5",
		},
		PinUpperBound: map[string]int{},
	}
}

// Load reads a variants file. Sections the file leaves out keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variants: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing variants %s: %w", path, err)
	}

	base := Default()
	if len(cfg.Platforms) == 0 {
		cfg.Platforms = base.Platforms
	}
	if len(cfg.Python) == 0 {
		cfg.Python = base.Python
	}
	if len(cfg.NumPy) == 0 {
		cfg.NumPy = base.NumPy
	}
	if cfg.Compilers == nil {
		cfg.Compilers = base.Compilers
	} else {
		for lang, byOS := range base.Compilers {
			if _, ok := cfg.Compilers[lang]; !ok {
				cfg.Compilers[lang] = byOS
			}
		}
	}
	if cfg.HostVersions == nil {
		cfg.HostVersions = base.HostVersions
	}
	if cfg.PinUpperBound == nil {
		cfg.PinUpperBound = map[string]int{}
	}

	for _, triple := range cfg.Platforms {
		if _, err := platform.New(triple, "", ""); err != nil {
			return nil, fmt.Errorf("variants %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Compiler returns the dependency line implementing a compiler for the
// given language on the given operating system.
func (c *Config) Compiler(lang, os string) (string, bool) {
	byOS, ok := c.Compilers[lang]
	if !ok {
		return "", false
	}
	line, ok := byOS[os]
	return line, ok
}

// HostVersion returns the configured resolved version for a host
// dependency, if any.
func (c *Config) HostVersion(name string) (string, bool) {
	v, ok := c.HostVersions[name]
	return v, ok
}

// UpperBoundComponents returns how many leading version components a
// pin's upper bound keeps. The default bound bumps the first.
func (c *Config) UpperBoundComponents(name string) int {
	if n, ok := c.PinUpperBound[name]; ok && n > 0 {
		return n
	}
	return 1
}

// Targets expands the configuration into the concrete target list,
// crossing platforms with python versions and, when withNumPy is set,
// numpy versions.
func (c *Config) Targets(withNumPy bool) ([]platform.Target, error) {
	var targets []platform.Target
	for _, triple := range c.Platforms {
		for _, py := range c.Python {
			if !withNumPy {
				t, err := platform.New(triple, py, "")
				if err != nil {
					return nil, err
				}
				targets = append(targets, t)
				continue
			}
			for _, np := range c.NumPy {
				t, err := platform.New(triple, py, np)
				if err != nil {
					return nil, err
				}
				targets = append(targets, t)
			}
		}
	}
	return targets, nil
}
