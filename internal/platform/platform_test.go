package platform

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		triple string
		python string
		numpy  string
		os     string
		arch   string
		ok     bool
	}{
		{"linux-64", "3.7", "1.16", "linux", "64", true},
		{"linux-32", "2.7", "", "linux", "32", true},
		{"linux-aarch64", "3.8", "", "linux", "aarch64", true},
		{"linux-ppc64le", "3.7", "", "linux", "ppc64le", true},
		{"osx-64", "3.7", "", "osx", "64", true},
		{"osx-arm64", "3.9", "", "osx", "arm64", true},
		{"win-32", "2.7", "", "win", "32", true},
		{"win-64", "3.7", "1.21", "win", "64", true},
		{"linux-64", "", "", "linux", "64", true},
		{"freebsd-64", "3.7", "", "", "", false},
		{"linux64", "3.7", "", "", "", false},
		{"", "3.7", "", "", "", false},
		{"linux-64", "3", "", "", "", false},
		{"linux-64", "py37", "", "", "", false},
		{"linux-64", "3.7", "numpy", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.triple+"_"+tt.python, func(t *testing.T) {
			target, err := New(tt.triple, tt.python, tt.numpy)
			if tt.ok && err != nil {
				t.Fatalf("New(%q, %q, %q) failed: %v", tt.triple, tt.python, tt.numpy, err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("New(%q, %q, %q) succeeded, want error", tt.triple, tt.python, tt.numpy)
				}
				return
			}
			if target.OS != tt.os || target.Arch != tt.arch {
				t.Errorf("New(%q) = %s/%s, want %s/%s", tt.triple, target.OS, target.Arch, tt.os, tt.arch)
			}
		})
	}
}

func TestNewUnknownPlatform(t *testing.T) {
	_, err := New("freebsd-64", "3.7", "")
	if !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("New error = %v, want ErrUnknownPlatform", err)
	}
}

func TestHost(t *testing.T) {
	// The host must always map into the known set on supported
	// development platforms.
	triple := Host()
	if _, err := New(triple, "", ""); err != nil {
		t.Errorf("Host() = %q is not a known platform: %v", triple, err)
	}
}

func TestTags(t *testing.T) {
	tests := []struct {
		python string
		numpy  string
		pyTag  string
		npTag  string
	}{
		{"3.7", "1.16", "py37", "np116"},
		{"2.7", "", "py27", ""},
		{"3.10", "1.21", "py310", "np121"},
		{"", "", "", ""},
	}

	for _, tt := range tests {
		target, err := New("linux-64", tt.python, tt.numpy)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if got := target.PyTag(); got != tt.pyTag {
			t.Errorf("PyTag(%q) = %q, want %q", tt.python, got, tt.pyTag)
		}
		if got := target.NumPyTag(); got != tt.npTag {
			t.Errorf("NumPyTag(%q) = %q, want %q", tt.numpy, got, tt.npTag)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		triple string
		python string
		numpy  string
		want   string
	}{
		{"linux-64", "3.7", "1.16", "linux-64 py37 np116"},
		{"win-32", "2.7", "", "win-32 py27"},
		{"osx-64", "", "", "osx-64"},
	}

	for _, tt := range tests {
		target, err := New(tt.triple, tt.python, tt.numpy)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if got := target.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec string
		ok   bool
	}{
		{"linux-64 py37 np116", true},
		{"win-32 py27", true},
		{"osx-64", true},
		{"linux-64 py310", true},
		{"", false},
		{"freebsd-64 py37", false},
		{"linux-64 rb25", false},
		{"linux-64 pyxx", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			target, err := ParseSpec(tt.spec)
			if !tt.ok {
				if err == nil {
					t.Fatalf("ParseSpec(%q) succeeded, want error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpec(%q) failed: %v", tt.spec, err)
			}
			if target.String() != tt.spec {
				t.Errorf("round trip = %q, want %q", target.String(), tt.spec)
			}
		})
	}
}

func TestAxes(t *testing.T) {
	linux, err := New("linux-64", "3.7", "1.16")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	win, err := New("win-32", "2.7", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	boolTests := []struct {
		target Target
		name   string
		value  bool
		known  bool
	}{
		{linux, "linux", true, true},
		{linux, "osx", false, true},
		{linux, "win", false, true},
		{linux, "unix", true, true},
		{linux, "x86", true, true},
		{linux, "x86_64", true, true},
		{linux, "win32", false, true},
		{linux, "py2k", false, true},
		{linux, "py3k", true, true},
		{linux, "py37", true, true},
		{linux, "py27", false, true},
		{linux, "py310", false, true},
		{linux, "armv7", false, false},
		{linux, "cuda", false, false},
		{win, "win", true, true},
		{win, "win32", true, true},
		{win, "win64", false, true},
		{win, "unix", false, true},
		{win, "x86_64", false, true},
		{win, "py2k", true, true},
		{win, "py27", true, true},
	}

	for _, tt := range boolTests {
		t.Run(tt.target.Platform+"_"+tt.name, func(t *testing.T) {
			value, known := tt.target.Bool(tt.name)
			if value != tt.value || known != tt.known {
				t.Errorf("Bool(%q) = %v/%v, want %v/%v", tt.name, value, known, tt.value, tt.known)
			}
		})
	}

	intTests := []struct {
		target Target
		name   string
		value  int
		known  bool
	}{
		{linux, "py", 37, true},
		{linux, "np", 116, true},
		{win, "py", 27, true},
		{win, "np", 0, false},
		{linux, "cuda", 0, false},
	}

	for _, tt := range intTests {
		t.Run(tt.target.Platform+"_int_"+tt.name, func(t *testing.T) {
			value, known := tt.target.Int(tt.name)
			if value != tt.value || known != tt.known {
				t.Errorf("Int(%q) = %d/%v, want %d/%v", tt.name, value, known, tt.value, tt.known)
			}
		})
	}
}

func TestVersionValue(t *testing.T) {
	tests := []struct {
		version string
		want    int
		ok      bool
	}{
		{"3.7", 37, true},
		{"2.7", 27, true},
		{"3.10", 310, true},
		{"1.16", 116, true},
		{"1.21", 121, true},
		{"", 0, false},
		{"3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, ok := versionValue(tt.version)
			if got != tt.want || ok != tt.ok {
				t.Errorf("versionValue(%q) = %d/%v, want %d/%v", tt.version, got, ok, tt.want, tt.ok)
			}
		})
	}
}
