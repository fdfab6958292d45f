// Package recipe defines the in-memory form of a packaging recipe
// after template expansion and parsing.
package recipe

import (
	"fmt"

	"github.com/quernbuild/quern/internal/selector"
)

// Recipe is one parsed meta.yaml.
type Recipe struct {
	Package      Package
	Sources      []Source
	Build        Build
	Requirements Requirements
	Test         Test
	About        About
	Extra        Extra
}

// Package names the thing the recipe builds.
type Package struct {
	Name    string
	Version string
}

// Source is one source artifact with an optional platform condition.
type Source struct {
	URL      string
	SHA256   string
	Folder   string
	Patches  []Patch
	Selector *selector.Expr
	Line     int
}

// Patch is a patch file applied to an unpacked source tree.
type Patch struct {
	Path     string
	Selector *selector.Expr
	Line     int
}

// Build carries the build-section knobs quern understands.
type Build struct {
	Number      int
	Script      string
	EntryPoints []string

	// Skip marks the recipe as not built at all on targets matching
	// SkipSelector. Without a selector the skip is unconditional.
	Skip         bool
	SkipSelector *selector.Expr
	SkipLine     int
}

// Requirements holds the three dependency phases of a build.
type Requirements struct {
	Build []Dep
	Host  []Dep
	Run   []Dep
}

// Dep is one dependency line. Exactly one of the plain form (Name with
// an optional Constraint), the compiler form (Compiler set) and the
// pin form (PinCompatible set) is used per line.
type Dep struct {
	Name          string
	Constraint    string
	Compiler      string
	PinCompatible bool
	Selector      *selector.Expr
	Line          int
}

// Test describes the recipe's smoke-test block.
type Test struct {
	Requires []Dep
	Imports  []Entry
	Commands []Entry
}

// Entry is a plain recipe line with an optional platform condition.
type Entry struct {
	Text     string
	Selector *selector.Expr
	Line     int
}

// About is display metadata passed through to manifests.
type About struct {
	Home          string `json:"home,omitempty"`
	License       string `json:"license,omitempty"`
	LicenseFamily string `json:"license_family,omitempty"`
	LicenseFile   string `json:"license_file,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Description   string `json:"description,omitempty"`
	DocURL        string `json:"doc_url,omitempty"`
	DevURL        string `json:"dev_url,omitempty"`
}

// Extra holds the free-form recipe extras quern keeps.
type Extra struct {
	Maintainers []string
}

// ParseError reports malformed recipe input.
type ParseError struct {
	Name string // file name or source label
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	switch {
	case e.Name != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Msg)
	case e.Name != "":
		return fmt.Sprintf("%s: %s", e.Name, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}
