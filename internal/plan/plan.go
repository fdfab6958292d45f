// Package plan resolves a recipe against one concrete target into the
// exact dependency sets a build of it would use.
package plan

import (
	"github.com/quernbuild/quern/internal/platform"
	"github.com/quernbuild/quern/internal/recipe"
)

// BuildPlan is a fully resolved recipe for one target: every selector
// decided, every compiler named, every pin concretized.
type BuildPlan struct {
	Package     string          `json:"package"`
	Version     string          `json:"version"`
	Target      platform.Target `json:"target"`
	BuildNumber int             `json:"build_number"`
	BuildString string          `json:"build_string"`
	Digest      string          `json:"digest"`
	Script      string          `json:"script,omitempty"`
	EntryPoints []string        `json:"entry_points,omitempty"`
	Sources     []Source        `json:"sources"`
	Build       []Dep           `json:"build"`
	Host        []Dep           `json:"host"`
	Run         []Dep           `json:"run"`
	Test        Test            `json:"test"`
	About       recipe.About    `json:"about,omitempty"`
	Maintainers []string        `json:"maintainers,omitempty"`
}

// Dep is one resolved dependency.
type Dep struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`

	// HostVersion is the concrete host version a pin resolved
	// against, empty for ordinary dependencies.
	HostVersion string `json:"host_version,omitempty"`
}

// Spec renders the dependency as a requirement line.
func (d Dep) Spec() string {
	if d.Constraint == "" {
		return d.Name
	}
	return d.Name + " " + d.Constraint
}

// Source is one resolved source artifact.
type Source struct {
	URL     string   `json:"url"`
	SHA256  string   `json:"sha256,omitempty"`
	Folder  string   `json:"folder,omitempty"`
	Patches []string `json:"patches,omitempty"`
}

// Test is the resolved smoke-test block.
type Test struct {
	Requires []Dep    `json:"requires,omitempty"`
	Imports  []string `json:"imports,omitempty"`
	Commands []string `json:"commands,omitempty"`
}

// Resolution is the outcome of resolving one target: either a build
// plan or a deliberate skip.
type Resolution struct {
	Skipped bool       `json:"skipped,omitempty"`
	Reason  string     `json:"reason,omitempty"`
	Plan    *BuildPlan `json:"plan,omitempty"`
}
