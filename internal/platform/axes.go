package platform

import "strconv"

// Target implements selector.Axes, so conditions evaluate directly
// against a target.

// Bool answers boolean selector variables.
func (t Target) Bool(name string) (bool, bool) {
	switch name {
	case "linux":
		return t.OS == "linux", true
	case "osx":
		return t.OS == "osx", true
	case "win":
		return t.OS == "win", true
	case "unix":
		return t.OS == "linux" || t.OS == "osx", true
	case "x86":
		return t.Arch == "32" || t.Arch == "64", true
	case "x86_64":
		return t.Arch == "64", true
	case "win32":
		return t.Platform == "win-32", true
	case "win64":
		return t.Platform == "win-64", true
	case "aarch64":
		return t.Platform == "linux-aarch64", true
	case "arm64":
		return t.Platform == "osx-arm64", true
	case "ppc64le":
		return t.Platform == "linux-ppc64le", true
	case "py2k", "py3k":
		major, _, err := splitVersion(t.Python)
		if err != nil {
			return false, false
		}
		if name == "py2k" {
			return major == 2, true
		}
		return major == 3, true
	}
	// Version tags like py27 match exactly one python version.
	if len(name) > 2 && name[:2] == "py" && allDigits(name[2:]) {
		if t.Python == "" {
			return false, false
		}
		return name == t.PyTag(), true
	}
	return false, false
}

// Int answers numeric selector variables used in comparisons.
func (t Target) Int(name string) (int, bool) {
	switch name {
	case "py":
		return versionValue(t.Python)
	case "np":
		return versionValue(t.NumPy)
	}
	return 0, false
}

// versionValue concatenates major and minor digits the way version
// tags do: "3.7" is 37, "3.10" is 310, "1.16" is 116.
func versionValue(version string) (int, bool) {
	if version == "" {
		return 0, false
	}
	major, minor, err := splitVersion(version)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strconv.Itoa(major) + strconv.Itoa(minor))
	if err != nil {
		return 0, false
	}
	return n, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
