package plan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quernbuild/quern/internal/platform"
	"github.com/quernbuild/quern/internal/recipe"
	"github.com/quernbuild/quern/internal/selector"
	"github.com/quernbuild/quern/internal/variant"
)

// Resolve validates a recipe against one target and produces its build
// plan, or reports that the target is deliberately skipped. Dependency
// order follows the recipe.
func Resolve(rec *recipe.Recipe, target platform.Target, cfg *variant.Config) (*Resolution, error) {
	if cfg == nil {
		cfg = variant.Default()
	}

	skipped, reason, err := skip(rec, target)
	if err != nil {
		return nil, err
	}
	if skipped {
		return &Resolution{Skipped: true, Reason: reason}, nil
	}

	p := &BuildPlan{
		Package:     rec.Package.Name,
		Version:     rec.Package.Version,
		Target:      target,
		BuildNumber: rec.Build.Number,
		Script:      rec.Build.Script,
		EntryPoints: append([]string(nil), rec.Build.EntryPoints...),
		About:       rec.About,
		Maintainers: append([]string(nil), rec.Extra.Maintainers...),
	}

	p.Sources, err = resolveSources(rec.Sources, target)
	if err != nil {
		return nil, err
	}

	// Host resolves before run so pins have something to point at.
	p.Build, err = resolvePhase(rec.Requirements.Build, target, cfg, nil)
	if err != nil {
		return nil, err
	}
	p.Host, err = resolvePhase(rec.Requirements.Host, target, cfg, nil)
	if err != nil {
		return nil, err
	}
	host := make(map[string]Dep, len(p.Host))
	for _, d := range p.Host {
		host[d.Name] = d
	}
	p.Run, err = resolvePhase(rec.Requirements.Run, target, cfg, host)
	if err != nil {
		return nil, err
	}
	p.Test.Requires, err = resolvePhase(rec.Test.Requires, target, cfg, host)
	if err != nil {
		return nil, err
	}
	p.Test.Imports, err = resolveEntries(rec.Test.Imports, target)
	if err != nil {
		return nil, err
	}
	p.Test.Commands, err = resolveEntries(rec.Test.Commands, target)
	if err != nil {
		return nil, err
	}

	p.Digest, err = Fingerprint(p)
	if err != nil {
		return nil, err
	}
	p.BuildString = buildString(p)
	return &Resolution{Plan: p}, nil
}

func skip(rec *recipe.Recipe, target platform.Target) (bool, string, error) {
	if !rec.Build.Skip {
		return false, "", nil
	}
	if rec.Build.SkipSelector == nil {
		return true, "build.skip is unconditional", nil
	}
	match, err := rec.Build.SkipSelector.Eval(target)
	if err != nil {
		return false, "", err
	}
	if !match {
		return false, "", nil
	}
	return true, fmt.Sprintf("build.skip [%s] matches %s", rec.Build.SkipSelector, target), nil
}

func active(sel *selector.Expr, target platform.Target) (bool, error) {
	if sel == nil {
		return true, nil
	}
	return sel.Eval(target)
}

// resolvePhase filters one requirement list down to the target and
// concretizes compiler and pin entries. A nil host map marks a phase
// where pins are not allowed.
func resolvePhase(deps []recipe.Dep, target platform.Target, cfg *variant.Config, host map[string]Dep) ([]Dep, error) {
	resolved := make([]Dep, 0, len(deps))
	for _, d := range deps {
		keep, err := active(d.Selector, target)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		switch {
		case d.Compiler != "":
			line, ok := cfg.Compiler(d.Compiler, target.OS)
			if !ok {
				return nil, &UnknownCompilerError{Language: d.Compiler, OS: target.OS, Line: d.Line}
			}
			name, constraint := splitSpec(line)
			resolved = append(resolved, Dep{Name: name, Constraint: constraint})
		case d.PinCompatible:
			if host == nil {
				return nil, &UnresolvedPinError{Name: d.Name, Line: d.Line, Reason: "pin_compatible is only valid in run and test requirements"}
			}
			pinned, ok := host[d.Name]
			if !ok {
				return nil, &UnresolvedPinError{Name: d.Name, Line: d.Line}
			}
			version, ok := hostVersion(d.Name, pinned, target, cfg)
			if !ok {
				return nil, &UnresolvedPinError{Name: d.Name, Line: d.Line, Reason: "no resolved host version to pin against"}
			}
			upper := bumpVersion(version, cfg.UpperBoundComponents(d.Name))
			resolved = append(resolved, Dep{
				Name:        d.Name,
				Constraint:  fmt.Sprintf(">=%s,<%s", version, upper),
				HostVersion: version,
			})
		default:
			constraint := d.Constraint
			axis := axisVersion(d.Name, target)
			if constraint == "" {
				// Unconstrained interpreter deps pin to the
				// target's variant version.
				if axis != "" {
					constraint = axis + ".*"
				}
			} else if axis != "" && !satisfies(axis, constraint) {
				return nil, &ConstraintError{Name: d.Name, Constraint: constraint, Version: axis, Line: d.Line}
			}
			resolved = append(resolved, Dep{Name: d.Name, Constraint: constraint})
		}
	}
	return resolved, nil
}

// hostVersion decides the concrete version a pin is written against:
// a host_versions entry when it refines the target's variant version,
// the variant version itself, or a bare version constraint on the
// pinned host line.
func hostVersion(name string, pinned Dep, target platform.Target, cfg *variant.Config) (string, bool) {
	axis := axisVersion(name, target)
	if configured, ok := cfg.HostVersion(name); ok {
		if axis == "" || configured == axis || strings.HasPrefix(configured, axis+".") {
			return configured, true
		}
	}
	if axis != "" {
		return axis, true
	}
	if versionPattern.MatchString(pinned.Constraint) {
		return pinned.Constraint, true
	}
	return "", false
}

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

func axisVersion(name string, target platform.Target) string {
	switch name {
	case "python":
		return target.Python
	case "numpy":
		return target.NumPy
	}
	return ""
}

func splitSpec(line string) (name, constraint string) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.TrimSpace(fields[1])
}

func resolveSources(sources []recipe.Source, target platform.Target) ([]Source, error) {
	resolved := make([]Source, 0, len(sources))
	for _, src := range sources {
		keep, err := active(src.Selector, target)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		out := Source{URL: src.URL, SHA256: src.SHA256, Folder: src.Folder}
		for _, patch := range src.Patches {
			keep, err := active(patch.Selector, target)
			if err != nil {
				return nil, err
			}
			if keep {
				out.Patches = append(out.Patches, patch.Path)
			}
		}
		resolved = append(resolved, out)
	}
	return resolved, nil
}

func resolveEntries(entries []recipe.Entry, target platform.Target) ([]string, error) {
	resolved := make([]string, 0, len(entries))
	for _, entry := range entries {
		keep, err := active(entry.Selector, target)
		if err != nil {
			return nil, err
		}
		if keep {
			resolved = append(resolved, entry.Text)
		}
	}
	return resolved, nil
}

// buildString renders the build tag: interpreter tags, seven digest
// characters and the build number, such as np116py37h3f9c2a1_0.
func buildString(p *BuildPlan) string {
	var b strings.Builder
	b.WriteString(p.Target.NumPyTag())
	b.WriteString(p.Target.PyTag())
	hash := strings.TrimPrefix(p.Digest, "blake3:")
	if len(hash) > 7 {
		hash = hash[:7]
	}
	fmt.Fprintf(&b, "h%s_%d", hash, p.BuildNumber)
	return b.String()
}
