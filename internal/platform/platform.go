// Package platform describes concrete build targets: a platform triple
// such as linux-64 plus the interpreter versions pinned for it.
package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Known lists the platform triples quern understands.
var Known = []string{
	"linux-32", "linux-64", "linux-aarch64", "linux-ppc64le",
	"osx-64", "osx-arm64",
	"win-32", "win-64",
}

// ErrUnknownPlatform reports a platform triple outside the known set.
var ErrUnknownPlatform = errors.New("unknown platform")

// Target is one concrete build target.
type Target struct {
	Platform string `json:"platform"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Python   string `json:"python,omitempty"`
	NumPy    string `json:"numpy,omitempty"`
}

// New builds a target from a platform triple and interpreter versions.
// Versions are MAJOR.MINOR strings and may be empty when unused.
func New(triple, python, numpy string) (Target, error) {
	os, arch, err := split(triple)
	if err != nil {
		return Target{}, err
	}
	if python != "" {
		if _, _, err := splitVersion(python); err != nil {
			return Target{}, fmt.Errorf("python version %q: %w", python, err)
		}
	}
	if numpy != "" {
		if _, _, err := splitVersion(numpy); err != nil {
			return Target{}, fmt.Errorf("numpy version %q: %w", numpy, err)
		}
	}
	return Target{Platform: triple, OS: os, Arch: arch, Python: python, NumPy: numpy}, nil
}

// Host returns the platform triple for the machine quern runs on.
func Host() string {
	os := runtime.GOOS
	switch os {
	case "darwin":
		os = "osx"
	case "windows":
		os = "win"
	}
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "64"
	case "386":
		arch = "32"
	case "arm64":
		if os == "osx" {
			arch = "arm64"
		} else {
			arch = "aarch64"
		}
	}
	return os + "-" + arch
}

// String renders the target the way manifests and reports name it,
// such as "linux-64 py37 np116".
func (t Target) String() string {
	s := t.Platform
	if tag := t.PyTag(); tag != "" {
		s += " " + tag
	}
	if tag := t.NumPyTag(); tag != "" {
		s += " " + tag
	}
	return s
}

// PyTag returns the python build-string tag, such as "py37".
func (t Target) PyTag() string {
	return versionTag("py", t.Python)
}

// NumPyTag returns the numpy build-string tag, such as "np116".
func (t Target) NumPyTag() string {
	return versionTag("np", t.NumPy)
}

// ParseSpec parses a rendered target such as "linux-64 py37 np116".
func ParseSpec(s string) (Target, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Target{}, fmt.Errorf("empty target")
	}
	var python, numpy string
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "py"):
			v, err := tagVersion(strings.TrimPrefix(f, "py"))
			if err != nil {
				return Target{}, fmt.Errorf("target tag %q: %w", f, err)
			}
			python = v
		case strings.HasPrefix(f, "np"):
			v, err := tagVersion(strings.TrimPrefix(f, "np"))
			if err != nil {
				return Target{}, fmt.Errorf("target tag %q: %w", f, err)
			}
			numpy = v
		default:
			return Target{}, fmt.Errorf("unrecognized target tag %q", f)
		}
	}
	return New(fields[0], python, numpy)
}

func split(triple string) (string, string, error) {
	for _, known := range Known {
		if triple == known {
			i := strings.Index(triple, "-")
			return triple[:i], triple[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("%w %q (known: %s)", ErrUnknownPlatform, triple, strings.Join(Known, ", "))
}

func splitVersion(v string) (major, minor int, err error) {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("want MAJOR.MINOR")
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("want MAJOR.MINOR")
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("want MAJOR.MINOR")
	}
	return major, minor, nil
}

// versionTag renders "3.7" as "py37", "1.16" as "np116". The digits of
// major and minor concatenate, so "3.10" becomes "py310".
func versionTag(prefix, version string) string {
	if version == "" {
		return ""
	}
	major, minor, err := splitVersion(version)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%d%d", prefix, major, minor)
}

// tagVersion reverses versionTag: "37" becomes "3.7", "310" becomes
// "3.10". The first digit is the major version.
func tagVersion(digits string) (string, error) {
	if len(digits) < 2 {
		return "", fmt.Errorf("want at least two digits")
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", fmt.Errorf("want digits")
		}
	}
	return digits[:1] + "." + digits[1:], nil
}
